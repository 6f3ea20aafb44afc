package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer. Clients only receive;
	// anything beyond a ping-sized frame is suspect.
	maxMessageSize = 512
)

// Client represents a WebSocket client connection
type Client struct {
	server    *ArenaServer
	conn      *websocket.Conn
	send      chan string
	id        string
	closeOnce sync.Once
}

// HandleWebSocket upgrades a dashboard connection and starts its pumps
func (s *ArenaServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan string, 16),
		id:     uuid.NewString(),
	}

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}

// checkOrigin validates the connection origin against configured allowed
// origins. Requests without an Origin header (direct clients, tests) are
// accepted.
func (s *ArenaServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}

	for _, allowedOrigin := range allowed {
		if strings.HasPrefix(origin, allowedOrigin) {
			return true
		}
	}
	return false
}

// readPump drains incoming frames. Dashboard clients never send real
// payloads; the read loop exists to notice disconnects and answer pings.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.server.logger.Warnw("WebSocket read error",
					"client_id", c.id,
					"error", err,
				)
			}
			return
		}
	}
}

// writePump writes refresh signals and keepalive pings to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				c.server.logger.Debugw("Message write error",
					"client_id", c.id,
					"error", err,
				)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close safely closes the client's send channel
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
