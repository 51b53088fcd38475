package realtime

import (
	"sync"
	"time"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
)

// Channel is one live push connection. The registry only ever needs to
// hand a payload over or shut the connection down, so tests can plug in
// a fake instead of a real websocket.
type Channel interface {
	// Send hands the payload to the connection without blocking.
	// Returns false when the connection is not in a ready state; the
	// payload is then dropped, never queued or retried.
	Send(payload []byte) bool

	// Close shuts the underlying transport down. Idempotent.
	Close()
}

type registryEntry struct {
	channel  Channel
	openedAt time.Time
}

// Registry is the single source of truth for which user is currently
// reachable and through which channel. At most one entry per user id:
// a second registration supersedes the first. The mutex guards the map
// only; it is never held across a send.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]registryEntry
	logger logging.Logger
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]registryEntry),
		logger: logger,
	}
}

// Register makes channel the user's current connection. A previous
// channel for the same user is closed after the map already points at
// the replacement, so the superseded channel's own close path cannot
// evict the new entry.
func (r *Registry) Register(userID string, channel Channel) {
	r.mu.Lock()
	prev, had := r.conns[userID]
	r.conns[userID] = registryEntry{channel: channel, openedAt: time.Now()}
	total := len(r.conns)
	r.mu.Unlock()

	if had && prev.channel != channel {
		r.logger.Logf("superseding connection for user %s", userID)
		prev.channel.Close()
	}
	r.logger.Logf("user %s registered, %d connected", userID, total)
}

// Unregister removes the entry only while it still points at channel.
// A late close callback from a superseded connection is a no-op here.
func (r *Registry) Unregister(userID string, channel Channel) {
	r.mu.Lock()
	entry, ok := r.conns[userID]
	if ok && entry.channel == channel {
		delete(r.conns, userID)
	}
	total := len(r.conns)
	r.mu.Unlock()

	if ok && entry.channel == channel {
		r.logger.Logf("user %s unregistered, %d connected", userID, total)
	}
}

func (r *Registry) Get(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[userID]
	if !ok {
		return nil, false
	}
	return entry.channel, true
}

// BroadcastTo sends the payload to every listed user that currently has
// a ready channel and returns the number of successful sends. Users
// without a channel, or with one that is not ready, are skipped
// silently.
func (r *Registry) BroadcastTo(userIDs []string, payload []byte) int {
	sent := 0
	for _, userID := range userIDs {
		r.mu.RLock()
		entry, ok := r.conns[userID]
		r.mu.RUnlock()
		if !ok {
			continue
		}
		if entry.channel.Send(payload) {
			sent++
		}
	}
	return sent
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Channels returns a snapshot of the registered channels, used by the
// connection manager when shutting the process down.
func (r *Registry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]Channel, 0, len(r.conns))
	for _, entry := range r.conns {
		channels = append(channels, entry.channel)
	}
	return channels
}
