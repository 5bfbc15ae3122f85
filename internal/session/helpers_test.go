// ABOUTME: Shared test fixtures for the session package
// ABOUTME: In-process websocket gateway, quiet logger, and client construction

package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/gateway/internal/config"
	"github.com/lumenchat/gateway/internal/events"
)

const testHello = `{"op":10,"d":{"heartbeat_interval":41250}}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startGateway serves an in-process websocket gateway. Each accepted
// connection gets the hello frame (if set) and a drain goroutine capturing
// client frames into inbound; script then runs with the connection and may
// block to keep it open.
func startGateway(t *testing.T, hello string, script func(conn *websocket.Conn)) (wsURL string, inbound chan []byte, dials *atomic.Int32) {
	t.Helper()

	inbound = make(chan []byte, 256)
	dials = &atomic.Int32{}
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)

		if hello != "" {
			conn.WriteMessage(websocket.TextMessage, []byte(hello))
		}

		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				select {
				case inbound <- data:
				default:
				}
			}
		}()

		if script != nil {
			script(conn)
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), inbound, dials
}

// newTestClient builds a client pinned to the given websocket URL with small
// heartbeat jitter so workers wake promptly in tests.
func newTestClient(t *testing.T, wsURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		Gateway: config.GatewayConfig{URL: wsURL, Intents: 523},
		Auth:    config.AuthConfig{Token: "test-token"},
	}
	c := New(cfg, testLogger())
	c.jitter = func() float64 { return 0.01 }
	return c
}

// recvEvent reads one event from the session queue or fails the test.
func recvEvent(t *testing.T, s *Session) events.Event {
	t.Helper()
	select {
	case evt, ok := <-s.Events():
		require.True(t, ok, "event queue closed unexpectedly")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

// recvFrame reads one raw client frame captured by the gateway.
func recvFrame(t *testing.T, inbound chan []byte) map[string]any {
	t.Helper()
	select {
	case data := <-inbound:
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client frame")
		return nil
	}
}
