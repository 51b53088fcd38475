package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
)

type fakeChannel struct {
	mu       sync.Mutex
	payloads [][]byte
	closed   bool
	ready    bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{ready: true}
}

func (f *fakeChannel) Send(payload []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || !f.ready {
		return false
	}
	f.payloads = append(f.payloads, payload)
	return true
}

func (f *fakeChannel) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeChannel) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(logging.Nop())
	ch := newFakeChannel()

	r.Register("alice", ch)

	got, ok := r.Get("alice")
	require.True(t, ok)
	require.Same(t, ch, got.(*fakeChannel))
	require.Equal(t, 1, r.Count())
}

func TestRegisterSupersedesPrevious(t *testing.T) {
	r := NewRegistry(logging.Nop())
	first := newFakeChannel()
	second := newFakeChannel()

	r.Register("alice", first)
	r.Register("alice", second)

	require.True(t, first.isClosed())
	require.False(t, second.isClosed())
	require.Equal(t, 1, r.Count())

	got, ok := r.Get("alice")
	require.True(t, ok)
	require.Same(t, second, got.(*fakeChannel))
}

func TestLateUnregisterFromSupersededChannel(t *testing.T) {
	r := NewRegistry(logging.Nop())
	first := newFakeChannel()
	second := newFakeChannel()

	r.Register("alice", first)
	r.Register("alice", second)

	// The superseded connection's close path fires after the
	// replacement is already in place; it must not evict it.
	r.Unregister("alice", first)

	got, ok := r.Get("alice")
	require.True(t, ok)
	require.Same(t, second, got.(*fakeChannel))
}

func TestUnregisterRemovesOwnEntry(t *testing.T) {
	r := NewRegistry(logging.Nop())
	ch := newFakeChannel()

	r.Register("alice", ch)
	r.Unregister("alice", ch)

	_, ok := r.Get("alice")
	require.False(t, ok)
	require.Equal(t, 0, r.Count())
}

func TestBroadcastToSkipsAbsentAndNotReady(t *testing.T) {
	r := NewRegistry(logging.Nop())
	open := newFakeChannel()
	stuck := newFakeChannel()
	stuck.ready = false

	r.Register("alice", open)
	r.Register("bob", stuck)

	sent := r.BroadcastTo([]string{"alice", "bob", "carol"}, []byte("hello"))

	require.Equal(t, 1, sent)
	require.Equal(t, 1, open.received())
	require.Equal(t, 0, stuck.received())
}

func TestBroadcastToConcurrentWithRegistration(t *testing.T) {
	r := NewRegistry(logging.Nop())
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		r.Register(id, newFakeChannel())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.BroadcastTo(ids, []byte("x"))
		}()
		go func() {
			defer wg.Done()
			r.Register("a", newFakeChannel())
		}()
	}
	wg.Wait()

	require.Equal(t, len(ids), r.Count())
}

func TestChannelsSnapshot(t *testing.T) {
	r := NewRegistry(logging.Nop())
	r.Register("alice", newFakeChannel())
	r.Register("bob", newFakeChannel())

	channels := r.Channels()
	require.Len(t, channels, 2)
}
