// ABOUTME: Health-monitoring worker that tears down an unhealthy attempt
// ABOUTME: Polls socket and worker liveness, applies a grace period, then cancels

package session

import (
	"context"
	"time"
)

const (
	// doctorPollInterval is how often the doctor checks session health.
	doctorPollInterval = 1 * time.Second

	// doctorGracePeriod delays teardown after an unhealthy observation so a
	// transient blip does not flap the whole attempt.
	doctorGracePeriod = 5 * time.Second
)

// runDoctor watches the session until cancelled. A session is unhealthy when
// the socket is closed or either core worker is no longer running. On
// unhealthy detection it waits out the grace period, cancels both core
// workers, and stops itself; the supervisor's wait then unblocks and the
// supervise loop starts a fresh attempt.
func (s *Session) runDoctor(ctx context.Context) {
	log := s.logger.With("worker", WorkerDoctor)
	log.Debug("doctor started")

	ticker := s.clock.Ticker(doctorPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("doctor cancelled")
			return
		case <-ticker.C:
		}

		if s.healthy() {
			continue
		}

		log.Warn("session unhealthy, waiting grace period",
			"socket_open", s.SocketOpen(),
			"heartbeat_running", s.workerRunning(WorkerHeartbeat),
			"processor_running", s.workerRunning(WorkerProcessor),
			"grace", doctorGracePeriod,
		)

		grace := s.clock.Timer(doctorGracePeriod)
		select {
		case <-ctx.Done():
			grace.Stop()
			log.Debug("doctor cancelled")
			return
		case <-grace.C:
		}

		log.Warn("tearing down session workers")
		s.StopWorker(WorkerHeartbeat)
		s.StopWorker(WorkerProcessor)
		return
	}
}
