// Package realtime tracks which authenticated user owns which live
// connection and pushes newly persisted messages to the members allowed
// to see them.
package realtime

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

// InboundProcessor handles a client-originated chat message: authorize,
// revive a soft-left membership, persist, publish. Implemented by the
// message service; declared here so the package does not depend on it.
type InboundProcessor interface {
	ProcessInbound(chatID, authorID, text string) (*entity.Message, error)
}

// ConnectionManager runs the channel lifecycle: handshake, registration,
// frame dispatch and teardown. Each physical connection moves through
// connecting, open and closed; reconnection is entirely client-driven,
// the server only ever sees a fresh handshake.
type ConnectionManager struct {
	registry *Registry
	chats    repository.ChatRepository
	inbound  InboundProcessor
	logger   logging.Logger

	upgrader     websocket.Upgrader
	maxFrameSize int64
	wg           sync.WaitGroup
}

func NewConnectionManager(registry *Registry, chats repository.ChatRepository, inbound InboundProcessor, maxFrameSize int64, logger logging.Logger) *ConnectionManager {
	return &ConnectionManager{
		registry: registry,
		chats:    chats,
		inbound:  inbound,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		maxFrameSize: maxFrameSize,
	}
}

// HandleWebSocket upgrades the request and brings the connection to the
// open state. The userId query parameter is required: without it the
// connection is closed with a policy violation before it is ever
// registered.
func (m *ConnectionManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Logf("websocket upgrade failed: %v", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		m.logger.Logf("handshake without userId rejected")
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "userId is required"),
			time.Now().Add(writeWait),
		)
		conn.Close()
		return
	}

	client := newClient(userID, conn, m, m.logger)
	m.registry.Register(userID, client)

	m.logMembershipSnapshot(userID)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		client.readPump()
	}()
	go func() {
		defer m.wg.Done()
		client.writePump()
	}()
}

// logMembershipSnapshot records which chats the user belongs to at
// connect time. Diagnostics only: a storage failure here must not keep
// the connection from opening.
func (m *ConnectionManager) logMembershipSnapshot(userID string) {
	chats, err := m.chats.GetForUser(userID)
	if err != nil {
		m.logger.Logf("membership snapshot for user %s failed, continuing with none: %v", userID, err)
		return
	}
	m.logger.Logf("user %s connected, member of %d chats", userID, len(chats))
}

// connectionClosed is the one exit path for a connection, whatever the
// cause: client close, network error or supersession. The registry
// compares channel identity, so a superseded connection closing late
// cannot evict its replacement.
func (m *ConnectionManager) connectionClosed(c *Client) {
	m.registry.Unregister(c.userID, c)
}

func (m *ConnectionManager) handleFrame(c *Client, raw []byte) {
	frame, err := DecodeFrame(raw)
	if err != nil {
		// Malformed frames are dropped; the connection stays open.
		m.logger.Logf("dropping malformed frame from user %s: %v", c.userID, err)
		return
	}

	switch f := frame.(type) {
	case PingFrame:
		c.Send(encodePong(time.Now()))

	case ChatMessageFrame:
		if _, err := m.inbound.ProcessInbound(f.ChatID, c.userID, f.Content); err != nil {
			// The failure goes back to the sender only, never to the
			// other members.
			c.Send(encodeError(err.Error()))
		}

	case UnknownFrame:
		m.logger.Logf("ignoring frame of unknown type %q from user %s", f.Type, c.userID)
	}
}

// Shutdown closes every live connection and waits for the pump
// goroutines to drain, up to the timeout.
func (m *ConnectionManager) Shutdown(timeout time.Duration) error {
	for _, channel := range m.registry.Channels() {
		channel.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Logf("all connections drained")
		return nil
	case <-time.After(timeout):
		m.logger.Logf("shutdown timeout reached with pumps still running")
		return ErrShutdownTimeout
	}
}

var ErrShutdownTimeout = errors.New("connection shutdown timed out")
