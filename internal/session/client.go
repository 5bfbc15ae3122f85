// ABOUTME: Gateway client exposing the control-plane API and supervise loop
// ABOUTME: Owns bootstrap staging, URL resolution, and attempt restart policy

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lumenchat/gateway/internal/config"
	"github.com/lumenchat/gateway/internal/journal"
	"github.com/lumenchat/gateway/internal/rest"
	"github.com/lumenchat/gateway/internal/wire"
)

// ErrHandshake indicates the attempt failed before a usable session existed:
// transport failure during open, an empty first frame, or a non-Hello opcode.
// The supervise loop recovers by starting a fresh attempt.
var ErrHandshake = errors.New("gateway handshake failed")

// handshakeRetryPause spaces out attempts after a handshake failure so a dead
// endpoint does not hot-loop the dialer.
const handshakeRetryPause = 1 * time.Second

// urlResolver resolves the gateway websocket base URL. Satisfied by
// *rest.Resolver.
type urlResolver interface {
	GatewayURL(ctx context.Context) (string, error)
}

// Client maintains an authenticated, auto-recovering gateway session. One
// attempt is active at a time; within it the heartbeat, processor, and doctor
// workers run concurrently over a shared Session.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	jitter   func() float64
	resolver urlResolver
	journal  journal.Recorder

	onSession func(*Session)

	mu      sync.Mutex
	current *Session
}

// New creates a gateway client from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	c := &Client{
		cfg:     cfg,
		logger:  logger.With("component", "gateway"),
		clock:   clock.New(),
		jitter:  rand.Float64,
		journal: journal.NewNoop(),
	}
	if cfg.Gateway.APIBase != "" {
		c.resolver = rest.NewResolver(cfg.Gateway.APIBase, cfg.Auth.Token)
	}
	return c
}

// SetJournal attaches an attempt journal. Defaults to a no-op recorder.
func (c *Client) SetJournal(j journal.Recorder) {
	c.journal = j
}

// OnSession registers a callback invoked with each session once it is ready.
// In Run mode a fresh session (and a fresh event queue) exists per attempt,
// so consumers resubscribe through this hook. The callback must not block.
func (c *Client) OnSession(fn func(*Session)) {
	c.onSession = fn
}

// Current returns the session of the active attempt, or nil between attempts.
func (c *Client) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) setCurrent(s *Session) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
}

// Shutdown stops the current attempt, if any, and prevents restart.
// Idempotent: repeated calls have no further effect.
func (c *Client) Shutdown() {
	if s := c.Current(); s != nil {
		s.Shutdown()
	}
}

// Open runs a single connection attempt and blocks until the handshake has
// completed and all three workers are confirmed scheduled. On handshake
// failure it returns the error instead of a session; the caller never waits
// on a session that was never constructed.
func (c *Client) Open(ctx context.Context) (*Session, error) {
	ready := make(chan attemptResult, 1)
	go c.runAttempt(ctx, ready)

	res := <-ready
	if res.err != nil {
		return nil, res.err
	}

	s := res.session
	if err := c.bootstrap(ctx, s); err != nil {
		s.teardown()
		return nil, err
	}
	c.setCurrent(s)
	return s, nil
}

// Run is the supervise loop: it runs attempts back to back, restarting on any
// completion, until termination is requested via Shutdown on the current
// session or by cancelling ctx. It returns only after the last attempt has
// wound down.
func (c *Client) Run(ctx context.Context) error {
	c.logger.Info("supervise loop starting")

	for {
		ready := make(chan attemptResult, 1)
		attemptDone := make(chan struct{})
		go func() {
			defer close(attemptDone)
			c.runAttempt(ctx, ready)
		}()

		res := <-ready
		if res.err != nil {
			<-attemptDone
			if errors.Is(res.err, config.ErrMissingToken) {
				// Configuration error, not a transient gateway fault.
				return res.err
			}
			if ctx.Err() != nil {
				c.logger.Info("supervise loop stopping")
				return nil
			}
			pause := c.clock.Timer(handshakeRetryPause)
			select {
			case <-ctx.Done():
				pause.Stop()
				c.logger.Info("supervise loop stopping")
				return nil
			case <-pause.C:
			}
			continue
		}

		s := res.session
		c.setCurrent(s)
		if err := c.bootstrap(ctx, s); err != nil {
			c.logger.Error("session bootstrap failed", "attempt", s.AttemptID, "error", err)
			s.teardown()
		} else if c.onSession != nil {
			c.onSession(s)
		}

		// External cancellation ends the current attempt promptly rather
		// than waiting for natural failure.
		stop := context.AfterFunc(ctx, s.Shutdown)
		<-attemptDone
		stop()
		c.setCurrent(nil)

		if s.TerminateRequested() {
			c.logger.Info("termination requested, supervise loop stopping", "attempt", s.AttemptID)
			return nil
		}
		if ctx.Err() != nil {
			c.logger.Info("supervise loop stopping")
			return nil
		}
	}
}

// bootstrap stages the bring-up after the supervisor reports a session:
// confirm heartbeat and processor are scheduled, then start the doctor and
// confirm it too. The staging exists so the doctor never observes a "worker
// not yet running" state as unhealthy. Only then does the session read ready.
func (c *Client) bootstrap(ctx context.Context, s *Session) error {
	if err := c.waitScheduled(ctx, s, WorkerHeartbeat); err != nil {
		return err
	}
	if err := c.waitScheduled(ctx, s, WorkerProcessor); err != nil {
		return err
	}

	s.startWorker(ctx, WorkerDoctor, s.runDoctor)
	if err := c.waitScheduled(ctx, s, WorkerDoctor); err != nil {
		return err
	}

	s.ready.Store(true)
	c.journal.Transition(ctx, s.AttemptID, "ready", "")
	c.logger.Info("session ready",
		"attempt", s.AttemptID,
		"heartbeat_interval", s.heartbeatInterval,
	)
	return nil
}

// waitScheduled polls until the named worker reports itself scheduled, up to
// the bootstrap budget.
func (c *Client) waitScheduled(ctx context.Context, s *Session, name string) error {
	deadline := c.clock.Timer(scheduleWaitTimeout)
	defer deadline.Stop()
	ticker := c.clock.Ticker(scheduleWaitPoll)
	defer ticker.Stop()

	for {
		if w := s.getWorker(name); w != nil && w.scheduled.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("worker %s not scheduled within %v", name, scheduleWaitTimeout)
		case <-ticker.C:
		}
	}
}

// resolveURL produces the full connect URL for this attempt, preferring a
// pinned gateway URL and falling back to REST resolution.
func (c *Client) resolveURL(ctx context.Context) (string, error) {
	base := c.cfg.Gateway.URL
	if base == "" {
		resolved, err := c.resolver.GatewayURL(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving gateway url: %w", err)
		}
		base = resolved
	}
	return wire.ConnectURL(base)
}

// identifyProperties reports client identification metadata for Identify.
func (c *Client) identifyProperties() wire.IdentifyProperties {
	return wire.IdentifyProperties{
		OS:      runtime.GOOS,
		Browser: "lumen-gateway",
		Device:  "lumen-gateway",
	}
}
