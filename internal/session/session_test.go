// ABOUTME: Tests for shared session state: sequence, readiness, publish semantics
// ABOUTME: Covers unset sequence, worker handle lifecycle, and queue backpressure

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/gateway/internal/events"
)

func TestSequence_UnsetUntilFirstWrite(t *testing.T) {
	s, _ := newBareSession(t)

	_, ok := s.Sequence()
	assert.False(t, ok)

	s.setSequence(7)
	seq, ok := s.Sequence()
	require.True(t, ok)
	assert.Equal(t, int64(7), seq)

	s.setSequence(3) // last value wins, even going backwards
	seq, _ = s.Sequence()
	assert.Equal(t, int64(3), seq)
}

func TestWorker_ScheduledAndRunningLifecycle(t *testing.T) {
	s, _ := newBareSession(t)

	w := s.startWorker(context.Background(), WorkerHeartbeat, blockUntilCancelled)
	require.Eventually(t, func() bool { return w.scheduled.Load() }, time.Second, 5*time.Millisecond)
	assert.True(t, s.workerRunning(WorkerHeartbeat))

	require.True(t, s.StopWorker(WorkerHeartbeat))
	assert.False(t, s.workerRunning(WorkerHeartbeat))
}

func TestPublish_CancelledProducerGivesUpOnFullQueue(t *testing.T) {
	s, _ := newBareSession(t)

	ctx := context.Background()
	for i := 0; i < eventQueueSize; i++ {
		require.True(t, s.publish(ctx, events.Synthetic(events.NameResume)))
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.publish(cancelled, events.Synthetic(events.NameResume)))
	assert.Equal(t, int64(eventQueueSize), s.EventsPublished())
}

func TestPublish_PreservesArrivalOrder(t *testing.T) {
	s, _ := newBareSession(t)
	ctx := context.Background()

	names := []string{"A", "B", "C", "D"}
	for _, n := range names {
		require.True(t, s.publish(ctx, events.Event{Name: n}))
	}

	for _, want := range names {
		got := <-s.Events()
		assert.Equal(t, want, got.Name)
	}
}

func TestReady_NeverResets(t *testing.T) {
	s, _ := newBareSession(t)
	assert.False(t, s.Ready())

	s.ready.Store(true)
	assert.True(t, s.Ready())

	s.markSocketClosed()
	assert.True(t, s.Ready(), "readiness is one-way")
}
