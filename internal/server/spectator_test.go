package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/crobots/internal/core/arena"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/match"
	"github.com/zeusync/crobots/internal/core/models"
	"github.com/zeusync/crobots/internal/core/systems/physics"
)

func snapshotAt(cycle uint64) arena.Snapshot {
	field := arena.New()
	_ = field.AddRobot(models.NewRobot("Rook", physics.Vec2{X: 100, Y: 200}, models.WithHeading(90)))
	s := field.Snapshot()
	s.Cycle = cycle
	return s
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func readTick(t *testing.T, conn *websocket.Conn) arena.Snapshot {
	t.Helper()
	f := readFrame(t, conn)
	require.Equal(t, MessageTick, f.Type)
	var s arena.Snapshot
	require.NoError(t, json.Unmarshal(f.Data, &s))
	return s
}

func dial(t *testing.T, s *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSpectatorBroadcast(t *testing.T) {
	srv := NewSpectatorServer("", nil)
	s := httptest.NewServer(srv)
	defer s.Close()

	first, second := dial(t, s), dial(t, s)
	require.Eventually(t, func() bool { return srv.Clients() == 2 }, time.Second, 10*time.Millisecond)

	srv.OnTick(snapshotAt(7))

	for _, conn := range []*websocket.Conn{first, second} {
		got := readTick(t, conn)
		assert.Equal(t, uint64(7), got.Cycle)
		require.Len(t, got.Robots, 1)
		assert.Equal(t, "Rook", got.Robots[0].Name)
		assert.Equal(t, physics.Vec2{X: 100, Y: 200}, got.Robots[0].Position)
	}
}

func TestSpectatorSendsLatestOnConnect(t *testing.T) {
	srv := NewSpectatorServer("", nil)
	s := httptest.NewServer(srv)
	defer s.Close()

	srv.OnTick(snapshotAt(3))
	conn := dial(t, s)

	assert.Equal(t, uint64(3), readTick(t, conn).Cycle)
}

func TestSpectatorDisconnect(t *testing.T) {
	srv := NewSpectatorServer("", nil)
	s := httptest.NewServer(srv)
	defer s.Close()

	conn := dial(t, s)
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStateEndpoint(t *testing.T) {
	srv := NewSpectatorServer("", nil)
	s := httptest.NewServer(srv)
	defer s.Close()

	resp, err := http.Get(s.URL + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.OnTick(snapshotAt(12))

	resp, err = http.Get(s.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var got arena.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, uint64(12), got.Cycle)
	assert.Equal(t, 1000.0, got.Width)

	resp, err = http.Post(s.URL+"/state", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(s.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartStop(t *testing.T) {
	srv := NewSpectatorServer("127.0.0.1:0", nil)
	ctx := context.Background()

	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
	require.NoError(t, srv.Start(ctx))
	assert.ErrorIs(t, srv.Start(ctx), ErrServerAlreadyRunning)
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr())

	srv.OnTick(snapshotAt(1))
	resp, err := http.Get("http://" + srv.Addr() + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(ctx))
	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
}

func TestStartFailsOnBadAddress(t *testing.T) {
	srv := NewSpectatorServer("256.0.0.1:bad", nil)
	assert.ErrorIs(t, srv.Start(context.Background()), ErrListenerFailed)
}

func TestClientEnqueueNeverBlocks(t *testing.T) {
	c := &client{send: make(chan []byte, 1)}
	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")))
}

func TestSpectatorForwardsMatchEvents(t *testing.T) {
	eventBus := bus.New()
	srv := NewSpectatorServer("", nil)
	require.NoError(t, srv.Follow(eventBus))
	s := httptest.NewServer(srv)
	defer s.Close()

	conn := dial(t, s)
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, time.Second, 10*time.Millisecond)

	runner := match.NewRunner(match.Config{MaxTicks: 1, Seed: 4, SpawnMargin: 100}, nil, eventBus)
	require.NoError(t, runner.Setup([]match.Entry{{Name: "A"}, {Name: "B"}}))
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, match.OutcomeLimit, res.Outcome)

	started := readFrame(t, conn)
	assert.Equal(t, match.EventMatchStarted, started.Type)
	var se match.StartedEvent
	require.NoError(t, json.Unmarshal(started.Data, &se))
	assert.Equal(t, []string{"A", "B"}, se.Robots)
	assert.Equal(t, runner.MatchID(), se.MatchID)

	finished := readFrame(t, conn)
	assert.Equal(t, match.EventMatchFinished, finished.Type)
	var result match.Result
	require.NoError(t, json.Unmarshal(finished.Data, &result))
	assert.Equal(t, match.OutcomeLimit, result.Outcome)
	assert.Equal(t, uint64(1), result.Cycles)
}

func TestStopUnfollowsBus(t *testing.T) {
	eventBus := bus.New()
	srv := NewSpectatorServer("127.0.0.1:0", nil)
	require.NoError(t, srv.Follow(eventBus))
	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Empty(t, srv.subs)
}

func TestServeLingersAfterMatch(t *testing.T) {
	srv := NewSpectatorServer("127.0.0.1:0", nil)
	srv.OnTick(snapshotAt(40))

	done := make(chan struct{})
	served := make(chan error, 1)
	go func() { served <- srv.Serve(context.Background(), done, 300*time.Millisecond) }()
	require.Eventually(t, func() bool { return srv.Addr() != "127.0.0.1:0" }, time.Second, 5*time.Millisecond)

	close(done)
	resp, err := http.Get("http://" + srv.Addr() + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "final state stays visible while lingering")

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after linger")
	}
	assert.ErrorIs(t, srv.Stop(context.Background()), ErrServerNotRunning)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := NewSpectatorServer("127.0.0.1:0", nil)
	ctx, cancel := context.WithCancel(context.Background())

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, make(chan struct{}), time.Hour) }()
	require.Eventually(t, func() bool { return srv.Addr() != "127.0.0.1:0" }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server ignored cancellation")
	}
}
