package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/crobots/internal/core/arena"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/match"
	"github.com/zeusync/crobots/internal/core/observability/log"
)

var _ match.Observer = (*SpectatorServer)(nil)

// SpectatorServer is a read-only feed of a running match. Every snapshot
// handed to OnTick and every followed bus event is pushed to all websocket
// clients on /ws; /state serves the most recent snapshot.
type SpectatorServer struct {
	addr   string
	logger log.Log

	server   *http.Server
	listener net.Listener

	mu         sync.Mutex
	clients    map[*client]struct{}
	subs       []bus.Subscription
	latest     []byte
	latestTick []byte
}

// MessageTick is the message type of per-tick snapshots.
const MessageTick = "tick"

// Message is one websocket frame. Data is an arena.Snapshot for ticks and
// the event payload otherwise.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewSpectatorServer creates a server that will listen on addr once started.
func NewSpectatorServer(addr string, logger log.Log) *SpectatorServer {
	if logger == nil {
		logger = log.Nop()
	}
	return &SpectatorServer{
		addr:    addr,
		logger:  logger.With(log.String("component", "spectator")),
		clients: make(map[*client]struct{}),
	}
}

// Start binds the listener and serves in the background until Stop.
func (s *SpectatorServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("spectator server stopped", log.Error(err))
		}
	}(s.server)

	s.logger.Info("spectator server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Serve starts the server, keeps it up until done is closed and linger has
// passed, then stops it. A cancelled ctx skips the linger.
func (s *SpectatorServer) Serve(ctx context.Context, done <-chan struct{}, linger time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	select {
	case <-done:
		if linger > 0 {
			s.logger.Debug("spectator lingering", log.Duration("linger", linger))
			timer := time.NewTimer(linger)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop shuts the HTTP server down gracefully, disconnects every client and
// stops following the bus.
func (s *SpectatorServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	clients := s.clients
	s.clients = make(map[*client]struct{})
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Cancel()
	}
	if srv == nil {
		return ErrServerNotRunning
	}
	for c := range clients {
		c.close()
	}
	return srv.Shutdown(ctx)
}

// Addr returns the bound address, or the configured one before Start.
func (s *SpectatorServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *SpectatorServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/state":
		s.handleState(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *SpectatorServer) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		http.Error(w, "no match in progress", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(latest)
}

// OnTick publishes snapshot to every connected client. Clients whose send
// buffer is full are dropped rather than stalling the match.
func (s *SpectatorServer) OnTick(snapshot arena.Snapshot) {
	state, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("encode snapshot", log.Error(err))
		return
	}
	msg, err := json.Marshal(Message{Type: MessageTick, Data: json.RawMessage(state)})
	if err != nil {
		s.logger.Error("encode snapshot", log.Error(err))
		return
	}

	s.mu.Lock()
	s.latest = state
	s.latestTick = msg
	s.mu.Unlock()

	s.broadcast(msg)
}

// Follow forwards every event published on eventBus to the connected
// clients until Stop.
func (s *SpectatorServer) Follow(eventBus bus.EventBus) error {
	sub, err := eventBus.SubscribeAll(s.forward)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return nil
}

func (s *SpectatorServer) forward(e bus.Event) error {
	msg, err := json.Marshal(Message{Type: e.Type(), Data: e.Data()})
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	s.broadcast(msg)
	return nil
}

func (s *SpectatorServer) broadcast(msg []byte) {
	s.mu.Lock()
	var slow []*client
	for c := range s.clients {
		if !c.enqueue(msg) {
			slow = append(slow, c)
			delete(s.clients, c)
		}
	}
	s.mu.Unlock()

	for _, c := range slow {
		s.logger.Warn("dropping slow spectator", log.String("remote", c.remote))
		c.close()
	}
}

// Clients returns the number of connected spectators.
func (s *SpectatorServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
