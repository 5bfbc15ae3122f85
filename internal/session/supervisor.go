// ABOUTME: Control-plane supervisor running one gateway connection attempt
// ABOUTME: Dials, handshakes, identifies, starts the core workers, and waits them out

package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lumenchat/gateway/internal/config"
	"github.com/lumenchat/gateway/internal/wire"
)

// attemptResult is the tagged outcome of one supervisor attempt: a usable
// session, or the error that ended it before one existed. Callers waiting on
// the ready channel always get exactly one of the two, never a hang.
type attemptResult struct {
	session *Session
	err     error
}

// runAttempt performs one full connection attempt: dial the resolved gateway
// URL, require a Hello as the first frame, build the session, send Identify,
// start the heartbeat and processor workers, and deliver the session on the
// ready channel. It then blocks until both workers have stopped and closes
// the socket. Any handshake failure is delivered as the error arm of the
// result and ends the attempt without a usable session.
func (c *Client) runAttempt(ctx context.Context, ready chan<- attemptResult) {
	attemptID := uuid.New().String()
	log := c.logger.With("attempt", attemptID)
	c.journal.AttemptStarted(ctx, attemptID, c.clock.Now())

	fail := func(stage string, err error) {
		log.Error("attempt failed", "stage", stage, "error", err)
		c.journal.AttemptEnded(ctx, attemptID, "failed:"+stage, 0)
		ready <- attemptResult{err: err}
	}

	if c.cfg.Auth.Token == "" {
		fail("identify", config.ErrMissingToken)
		return
	}

	wsURL, err := c.resolveURL(ctx)
	if err != nil {
		fail("resolve", fmt.Errorf("%w: %w", ErrHandshake, err))
		return
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		fail("dial", fmt.Errorf("%w: %w", ErrHandshake, err))
		return
	}
	log.Debug("gateway socket open", "url", wsURL)

	// The first frame must be a non-empty Hello carrying the heartbeat
	// interval. Anything else ends the attempt here.
	_, frame, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		fail("hello", fmt.Errorf("%w: %w", ErrHandshake, err))
		return
	}
	heartbeatMs, err := wire.ParseHello(frame)
	if err != nil {
		conn.Close()
		fail("hello", fmt.Errorf("%w: %w", ErrHandshake, err))
		return
	}

	s := newSession(conn, heartbeatMs, attemptID, c.logger, c.clock)
	s.jitter = c.jitter
	c.journal.Transition(ctx, attemptID, "handshake_ok", fmt.Sprintf("heartbeat_interval=%dms", heartbeatMs))

	identify := wire.Identify(c.cfg.Auth.Token, c.cfg.Gateway.Intents, c.identifyProperties())
	if err := s.writeJSON(identify); err != nil {
		s.closeSocket()
		fail("identify", fmt.Errorf("sending identify: %w", err))
		return
	}
	c.journal.Transition(ctx, attemptID, "identify_sent", "")

	hb := s.startWorker(ctx, WorkerHeartbeat, s.runHeartbeat)
	pr := s.startWorker(ctx, WorkerProcessor, s.runProcessor)
	c.journal.Transition(ctx, attemptID, "workers_started", "")

	ready <- attemptResult{session: s}

	// Steady state: block until both core workers stop, in either order,
	// then release the socket.
	<-hb.done
	<-pr.done
	s.closeSocket()

	outcome := "completed"
	if s.TerminateRequested() {
		outcome = "terminated"
	}
	c.journal.AttemptEnded(ctx, attemptID, outcome, s.EventsPublished())
	log.Info("attempt ended", "outcome", outcome, "events_published", s.EventsPublished())
}
