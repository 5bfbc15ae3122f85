// ABOUTME: Heartbeat worker that keeps the gateway session alive
// ABOUTME: Sends the last observed sequence on a jittered interval until cancelled

package session

import (
	"context"
	"time"

	"github.com/lumenchat/gateway/internal/wire"
)

// runHeartbeat sends heartbeat frames until cancelled. Every interval, not
// only the first, is jittered down from the nominal interval by a uniform
// [0,1) factor; the gateway tolerates early beats and this keeps the client
// safely inside the deadline. The worker never restarts itself; recovery
// belongs to the supervise loop.
func (s *Session) runHeartbeat(ctx context.Context) {
	log := s.logger.With("worker", WorkerHeartbeat)
	log.Debug("heartbeat started", "interval", s.heartbeatInterval)

	for {
		var seq *int64
		if n, ok := s.Sequence(); ok {
			seq = &n
		}

		if err := s.writeJSON(wire.Heartbeat(seq)); err != nil {
			if ctx.Err() != nil {
				log.Debug("heartbeat cancelled")
				return
			}
			log.Error("heartbeat send failed", "error", err)
			return
		}
		log.Debug("heartbeat sent", "seq", seq)

		delay := time.Duration(float64(s.heartbeatInterval) * s.jitter())
		timer := s.clock.Timer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Debug("heartbeat cancelled")
			return
		case <-timer.C:
		}
	}
}
