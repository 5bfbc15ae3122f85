// ABOUTME: Tests for the client control-plane API: Open, Run, and shutdown
// ABOUTME: Covers handshake scenarios, identify ordering, restart, and termination

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/gateway/internal/config"
)

func TestOpen_IdentifySentBeforeHeartbeat(t *testing.T) {
	wsURL, inbound, _ := startGateway(t, testHello, nil)
	c := newTestClient(t, wsURL)

	s, err := c.Open(context.Background())
	require.NoError(t, err)
	defer s.Shutdown()

	assert.True(t, s.Ready())
	assert.Equal(t, 41250*time.Millisecond, s.HeartbeatInterval())

	// First frame must be the identify carrying token and intents.
	identify := recvFrame(t, inbound)
	assert.Equal(t, float64(2), identify["op"])
	d := identify["d"].(map[string]any)
	assert.Equal(t, "test-token", d["token"])
	assert.Equal(t, float64(523), d["intents"])
	props := d["properties"].(map[string]any)
	assert.NotEmpty(t, props["os"])
	assert.Equal(t, "lumen-gateway", props["browser"])

	// Only then the first heartbeat, with an explicit null sequence.
	heartbeat := recvFrame(t, inbound)
	assert.Equal(t, float64(1), heartbeat["op"])
	assert.Nil(t, heartbeat["d"])
}

func TestOpen_WrongOpcodeHello(t *testing.T) {
	wsURL, _, _ := startGateway(t, `{"op":0,"s":1,"t":"READY","d":{}}`, nil)
	c := newTestClient(t, wsURL)

	s, err := c.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshake)
	assert.Nil(t, s)
}

func TestOpen_EmptyFirstFrame(t *testing.T) {
	wsURL, _, _ := startGateway(t, "", func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte{})
	})
	c := newTestClient(t, wsURL)

	s, err := c.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshake)
	assert.Nil(t, s)
}

func TestOpen_DialFailure(t *testing.T) {
	c := newTestClient(t, "ws://127.0.0.1:1/gateway")

	s, err := c.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshake)
	assert.Nil(t, s)
}

func TestOpen_MissingToken(t *testing.T) {
	wsURL, _, _ := startGateway(t, testHello, nil)
	c := newTestClient(t, wsURL)
	c.cfg.Auth.Token = ""

	s, err := c.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingToken)
	assert.Nil(t, s)
}

func TestOpen_ResolvesGatewayURLOverREST(t *testing.T) {
	wsURL, inbound, _ := startGateway(t, testHello, nil)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gateway", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"url": wsURL})
	}))
	t.Cleanup(api.Close)

	cfg := &config.Config{
		Gateway: config.GatewayConfig{APIBase: api.URL, Intents: 1},
		Auth:    config.AuthConfig{Token: "test-token"},
	}
	c := New(cfg, testLogger())
	c.jitter = func() float64 { return 0.01 }

	s, err := c.Open(context.Background())
	require.NoError(t, err)
	defer s.Shutdown()

	assert.True(t, s.Ready())
	identify := recvFrame(t, inbound)
	assert.Equal(t, float64(2), identify["op"])
}

func TestOpen_ConnectURLCarriesVersionAndEncoding(t *testing.T) {
	var gotQuery atomic.Value
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(testHello))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, "ws"+srv.URL[4:])
	s, err := c.Open(context.Background())
	require.NoError(t, err)
	defer s.Shutdown()

	query, _ := gotQuery.Load().(string)
	assert.Contains(t, query, "encoding=json")
	assert.Contains(t, query, fmt.Sprintf("v=%d", 10))
}

func TestRun_RestartsAfterConnectionDrop(t *testing.T) {
	wsURL, _, dials := startGateway(t, testHello, func(conn *websocket.Conn) {
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	})
	c := newTestClient(t, wsURL)

	var sessions atomic.Int32
	c.OnSession(func(s *Session) {
		sessions.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	// The loop should bring up at least two attempts as connections drop.
	require.Eventually(t, func() bool { return sessions.Load() >= 2 }, 10*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, dials.Load(), int32(2))

	cancel()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("supervise loop did not stop after cancellation")
	}
}

func TestRun_ShutdownStopsLoopWithoutRestart(t *testing.T) {
	wsURL, _, dials := startGateway(t, testHello, nil)
	c := newTestClient(t, wsURL)

	got := make(chan *Session, 1)
	c.OnSession(func(s *Session) { got <- s })

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(context.Background()) }()

	var s *Session
	select {
	case s = <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no session became ready")
	}

	s.Shutdown()
	s.Shutdown() // idempotent: same observable effect as one call

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("supervise loop did not stop after shutdown")
	}

	assert.True(t, s.TerminateRequested())
	assert.Equal(t, int32(1), dials.Load(), "no new attempt after termination")
	assert.Nil(t, c.Current())
}

func TestRun_MissingTokenIsFatal(t *testing.T) {
	wsURL, _, _ := startGateway(t, testHello, nil)
	c := newTestClient(t, wsURL)
	c.cfg.Auth.Token = ""

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingToken)
}
