// ABOUTME: Processor worker that reads gateway frames and publishes decoded events
// ABOUTME: Tracks the ordering sequence and routes protocol-control opcodes

package session

import (
	"context"
	"log/slog"

	"github.com/lumenchat/gateway/internal/events"
	"github.com/lumenchat/gateway/internal/wire"
)

// runProcessor reads frames until cancelled or the socket dies. It closes the
// event queue on exit so consumers ranging over it terminate with the
// attempt. A closed socket or an empty frame is fatal to the attempt; a
// single undecodable event is logged and dropped.
func (s *Session) runProcessor(ctx context.Context) {
	log := s.logger.With("worker", WorkerProcessor)
	log.Debug("processor started")
	defer close(s.events)

	for {
		if ctx.Err() != nil {
			log.Debug("processor cancelled")
			return
		}
		if !s.SocketOpen() {
			log.Warn("socket closed, processor stopping")
			return
		}

		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			s.markSocketClosed()
			if ctx.Err() != nil {
				log.Debug("processor cancelled")
				return
			}
			log.Warn("gateway read failed, processor stopping", "error", err)
			return
		}
		if len(frame) == 0 {
			log.Warn("empty frame from gateway, processor stopping")
			return
		}

		env, err := wire.ParseEnvelope(frame)
		if err != nil {
			log.Warn("dropping unparseable frame", "error", err)
			continue
		}

		s.route(ctx, log, env)
	}
}

// route applies the per-envelope dispatch rules: record the sequence, publish
// synthetic events for control opcodes, decode dispatches, and silently drop
// anything else (acks, repeated hellos).
func (s *Session) route(ctx context.Context, log *slog.Logger, env *wire.Envelope) {
	if env.Seq != nil {
		s.setSequence(*env.Seq)
	}

	switch {
	case env.Op == wire.OpResume:
		s.publish(ctx, events.Synthetic(events.NameResume))

	case env.Op == wire.OpReconnect:
		s.publish(ctx, events.Synthetic(events.NameReconnect))

	case env.Op == wire.OpInvalidSession:
		evt, err := events.DecodeGeneric(events.NameInvalidSession, env.Data)
		if err != nil {
			log.Warn("dropping invalid_session payload", "error", err)
			return
		}
		s.publish(ctx, evt)

	case env.Type != "" && env.HasData():
		evt, err := events.Decode(env.Type, env.Data)
		if err != nil {
			log.Warn("dropping undecodable event", "event", env.Type, "error", err)
			return
		}
		s.publish(ctx, evt)

	default:
		log.Debug("ignoring frame", "op", env.Op.String())
	}
}
