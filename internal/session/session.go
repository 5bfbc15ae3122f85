// ABOUTME: Session state shared by the gateway workers for one connection attempt
// ABOUTME: Owns the socket, sequence tracking, worker handles, and the event queue

package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/lumenchat/gateway/internal/events"
)

const (
	// eventQueueSize bounds the decoded event queue. A full queue blocks the
	// processor, which is deliberate backpressure on slow consumers.
	eventQueueSize = 100

	// workerStopTimeout bounds how long StopWorker waits for a worker to
	// acknowledge cancellation before reporting failure.
	workerStopTimeout = 5 * time.Second

	// scheduleWaitTimeout and scheduleWaitPoll bound the bootstrap wait for a
	// worker to report itself scheduled.
	scheduleWaitTimeout = 30 * time.Second
	scheduleWaitPoll    = 100 * time.Millisecond

	writeTimeout = 10 * time.Second
)

// Worker names used as handle keys and in log output.
const (
	WorkerHeartbeat = "heartbeat"
	WorkerProcessor = "processor"
	WorkerDoctor    = "doctor"
)

// worker is the ownership handle for one cancellable background worker.
type worker struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	// scheduled flips once the worker's loop has actually been entered, so
	// the doctor never mistakes "not yet running" for "stopped".
	scheduled atomic.Bool
}

// running reports whether the worker was scheduled and has not yet completed.
func (w *worker) running() bool {
	if !w.scheduled.Load() {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Session is the shared state for one gateway connection attempt. It is owned
// exclusively by the supervisor that created it until handed to the caller,
// after which the three workers and the caller share it. A new attempt always
// gets a brand-new Session.
type Session struct {
	// AttemptID tags every log line and journal row for this attempt.
	AttemptID string

	conn              *websocket.Conn
	heartbeatInterval time.Duration

	writeMu    sync.Mutex // serialises all socket writes (identify, heartbeats)
	connClosed atomic.Bool

	// seq is single-writer (processor) with benign stale reads by heartbeat.
	seq    atomic.Int64
	seqSet atomic.Bool

	ready     atomic.Bool
	terminate atomic.Bool
	published atomic.Int64

	mu      sync.Mutex // guards workers; entries are removed once stopped
	workers map[string]*worker

	events chan events.Event

	logger *slog.Logger
	clock  clock.Clock
	jitter func() float64 // uniform [0,1), replaceable in tests
}

// newSession builds the shared state for a fresh attempt after a successful
// handshake established the heartbeat interval.
func newSession(conn *websocket.Conn, heartbeatMs int64, attemptID string, logger *slog.Logger, clk clock.Clock) *Session {
	return &Session{
		AttemptID:         attemptID,
		conn:              conn,
		heartbeatInterval: time.Duration(heartbeatMs) * time.Millisecond,
		workers:           make(map[string]*worker),
		events:            make(chan events.Event, eventQueueSize),
		logger:            logger.With("attempt", attemptID),
		clock:             clk,
		jitter:            rand.Float64,
	}
}

// Events returns the decoded event queue for this attempt. The channel closes
// when the processor stops, so a new subscription is needed per attempt.
func (s *Session) Events() <-chan events.Event {
	return s.events
}

// Ready reports whether the handshake completed and both core workers were
// confirmed running. It never resets to false.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// TerminateRequested reports whether Shutdown was called on this session.
func (s *Session) TerminateRequested() bool {
	return s.terminate.Load()
}

// HeartbeatInterval returns the interval fixed at handshake time.
func (s *Session) HeartbeatInterval() time.Duration {
	return s.heartbeatInterval
}

// Sequence returns the last observed gateway sequence number, if any.
func (s *Session) Sequence() (int64, bool) {
	if !s.seqSet.Load() {
		return 0, false
	}
	return s.seq.Load(), true
}

// setSequence records a sequence number from an inbound envelope. Last value
// wins; the heartbeat worker may read a slightly stale value.
func (s *Session) setSequence(seq int64) {
	s.seq.Store(seq)
	s.seqSet.Store(true)
}

// SocketOpen reports whether the gateway socket is still usable.
func (s *Session) SocketOpen() bool {
	return !s.connClosed.Load()
}

// markSocketClosed flags the socket as dead without closing it, used after a
// failed read so the doctor observes the unhealthy state.
func (s *Session) markSocketClosed() {
	s.connClosed.Store(true)
}

// closeSocket closes the gateway socket once. Further writes fail.
func (s *Session) closeSocket() {
	if s.connClosed.CompareAndSwap(false, true) && s.conn != nil {
		s.conn.Close()
	}
}

// writeJSON serialises a write to the gateway socket.
func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.connClosed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

// publish delivers an event to the queue in frame-arrival order, blocking
// while the queue is full. Returns false if the worker was cancelled first.
func (s *Session) publish(ctx context.Context, evt events.Event) bool {
	select {
	case s.events <- evt:
		s.published.Add(1)
		return true
	case <-ctx.Done():
		return false
	}
}

// EventsPublished returns how many events this attempt has delivered.
func (s *Session) EventsPublished() int64 {
	return s.published.Load()
}

// startWorker launches a named background worker and registers its handle.
func (s *Session) startWorker(ctx context.Context, name string, run func(context.Context)) *worker {
	wctx, cancel := context.WithCancel(ctx)
	w := &worker{name: name, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.workers[name] = w
	s.mu.Unlock()

	go func() {
		defer close(w.done)
		w.scheduled.Store(true)
		run(wctx)
	}()
	return w
}

// getWorker returns the handle for a named worker, or nil once it has been
// cleared by StopWorker.
func (s *Session) getWorker(name string) *worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers[name]
}

// clearWorker removes a stopped worker's handle.
func (s *Session) clearWorker(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workers, name)
}

// workerRunning reports whether the named worker was started and has not yet
// completed.
func (s *Session) workerRunning(name string) bool {
	w := s.getWorker(name)
	return w != nil && w.running()
}

// StopWorker cooperatively cancels the named worker and waits up to the stop
// budget for it to complete, clearing its handle on success. A worker that
// never completes leaves its handle set and the attempt permanently
// unhealthy; that is reported as an operational error rather than forced.
func (s *Session) StopWorker(name string) bool {
	w := s.getWorker(name)
	if w == nil {
		return true
	}

	w.cancel()

	timeout := s.clock.Timer(workerStopTimeout)
	defer timeout.Stop()

	select {
	case <-w.done:
		s.clearWorker(name)
		return true
	case <-timeout.C:
		s.logger.Error("worker did not stop within budget",
			"worker", name,
			"budget", workerStopTimeout,
		)
		return false
	}
}

// Shutdown requests teardown of this attempt and prevents the supervise loop
// from starting another. Safe to call more than once; the second call is a
// no-op.
func (s *Session) Shutdown() {
	if !s.terminate.CompareAndSwap(false, true) {
		return
	}

	s.logger.Info("shutdown requested")
	s.teardown()
}

// teardown closes the socket and stops all workers without requesting
// termination, ending the attempt so the supervise loop may start another.
func (s *Session) teardown() {
	s.closeSocket()
	s.StopWorker(WorkerHeartbeat)
	s.StopWorker(WorkerProcessor)
	s.StopWorker(WorkerDoctor)
}

// healthy reports whether the socket is open and both core workers are in a
// running state.
func (s *Session) healthy() bool {
	if !s.SocketOpen() {
		return false
	}
	return s.workerRunning(WorkerHeartbeat) && s.workerRunning(WorkerProcessor)
}
