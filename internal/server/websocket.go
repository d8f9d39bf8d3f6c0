package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/crobots/internal/core/observability/log"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	once   sync.Once
	done   chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue queues msg without blocking and reports whether it fit.
func (c *client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *SpectatorServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := newClient(conn)
	s.mu.Lock()
	if s.latestTick != nil {
		c.enqueue(s.latestTick)
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("spectator connected", log.String("remote", c.remote))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop discards inbound frames; it only exists to notice disconnects.
func (s *SpectatorServer) readLoop(c *client) {
	defer s.disconnect(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *SpectatorServer) writeLoop(c *client) {
	defer s.disconnect(c)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Warn("spectator write failed", log.String("remote", c.remote), log.Error(err))
				return
			}
		}
	}
}

func (s *SpectatorServer) disconnect(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	c.close()
	if ok {
		s.logger.Info("spectator disconnected", log.String("remote", c.remote))
	}
}
