package realtime

import (
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

// Client is one live websocket connection owned by an authenticated
// user. It implements Channel: the registry talks to it through Send
// and Close only.
type Client struct {
	userID   string
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	openedAt time.Time

	closed    atomic.Bool
	closeOnce sync.Once

	manager *ConnectionManager
	logger  logging.Logger
}

func newClient(userID string, conn *websocket.Conn, manager *ConnectionManager, logger logging.Logger) *Client {
	conn.SetReadLimit(manager.maxFrameSize)
	return &Client{
		userID:   userID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		openedAt: time.Now(),
		manager:  manager,
		logger:   logger,
	}
}

func (c *Client) UserID() string { return c.userID }

// Send hands the payload to the write pump without blocking. A closed
// client or a full buffer counts as not ready and the payload is
// dropped.
func (c *Client) Send(payload []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close tears the transport down. Safe to call from any goroutine and
// more than once; the read pump notices the closed connection and runs
// the unregister path, and the done channel wakes the write pump so it
// exits without waiting on the ping ticker.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Logf("error closing connection of user %s: %v", c.userID, err)
		}
	})
}

func (c *Client) readPump() {
	defer func() {
		c.manager.connectionClosed(c)
		c.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		c.manager.handleFrame(c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					c.logger.Logf("write to user %s failed: %v", c.userID, err)
				}
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Read errors on an open channel do not force a transition by
// themselves; they are logged and the transport close drives the
// cleanup in readPump's defer.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Logf("frame from user %s exceeded the size limit", c.userID)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.logger.Logf("user %s disconnected: %v", c.userID, err)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.logger.Logf("connection of user %s closed: %v", c.userID, err)
	default:
		c.logger.Logf("read error on connection of user %s: %v", c.userID, err)
	}
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
