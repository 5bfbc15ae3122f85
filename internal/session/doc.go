// Package session implements the gateway control plane: a persistent,
// authenticated, auto-recovering session with the Lumen real-time gateway.
//
// # Overview
//
// A Client runs one connection attempt at a time. Each attempt dials the
// gateway websocket, performs the Hello handshake, sends Identify, and runs
// three cooperating workers over a shared Session:
//
//   - heartbeat: sends the last observed sequence on a jittered interval
//   - processor: reads frames, tracks the sequence, decodes and publishes events
//   - doctor: polls liveness and tears down an unhealthy attempt
//
// The doctor is started only after both core workers are confirmed running,
// so a slow bring-up is never mistaken for a dead session.
//
// # Lifecycle
//
// Open runs a single attempt and blocks until the session is ready or the
// handshake fails. Run is the supervise loop: it restarts attempts on any
// completion until termination is requested. A brand-new Session (and a
// brand-new event queue) exists per attempt; nothing is reused across
// restarts except the caller-supplied configuration.
//
// # Consuming events
//
// Decoded events arrive on Session.Events, a bounded queue with blocking
// backpressure: a slow consumer stalls the processor, never the heartbeat.
// The channel closes when the attempt's processor stops, so long-lived
// consumers resubscribe per attempt via Client.OnSession:
//
//	client := session.New(cfg, logger)
//	client.OnSession(func(s *session.Session) {
//		go func() {
//			for evt := range s.Events() {
//				handle(evt)
//			}
//		}()
//	})
//	err := client.Run(ctx)
//
// # Failure model
//
// Handshake errors, read failures, and empty frames are fatal to the attempt
// and recovered by the supervise loop. A single undecodable event is logged
// and dropped. A worker that ignores cancellation past its stop budget is
// reported as an operational error and leaves the attempt stalled; that is
// the one scenario without automatic recovery.
package session
