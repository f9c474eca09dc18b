package chat

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id ClientID) (*Client, *fakeConn) {
	conn := newFakeConn()
	return &Client{ID: id, Conn: conn, Addr: conn.RemoteAddr().String()}, conn
}

func TestRegistry_AddRejectsWhenFull(t *testing.T) {
	r := NewRegistry(2, nil)

	a, _ := newTestClient(1)
	b, _ := newTestClient(2)
	c, _ := newTestClient(3)

	require.True(t, r.Add(a))
	require.True(t, r.Add(b))
	assert.False(t, r.Add(c))
	assert.Equal(t, 2, r.Len())

	r.Remove(a)
	assert.True(t, r.Add(c))
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(4, nil)
	a, _ := newTestClient(1)

	require.True(t, r.Add(a))
	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConcurrentAddNeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	r := NewRegistry(capacity, nil)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(id ClientID) {
			defer wg.Done()
			c, _ := newTestClient(id)
			if r.Add(c) {
				admitted.Add(1)
				assert.LessOrEqual(t, r.Len(), capacity)
				if id%2 == 0 {
					r.Remove(c)
					admitted.Add(-1)
				}
			}
		}(ClientID(i))
	}
	wg.Wait()

	assert.Equal(t, int(admitted.Load()), r.Len())
	assert.LessOrEqual(t, r.Len(), capacity)
}

func TestRegistry_BroadcastSkipsSender(t *testing.T) {
	r := NewRegistry(10, nil)

	sender, senderConn := newTestClient(1)
	require.True(t, r.Add(sender))

	peers := make([]*fakeConn, 0, 4)
	for i := 2; i <= 5; i++ {
		c, conn := newTestClient(ClientID(i))
		require.True(t, r.Add(c))
		peers = append(peers, conn)
	}

	n := r.Broadcast([]byte("hello"), sender)
	assert.Equal(t, len(peers), n)
	assert.Empty(t, senderConn.String())
	for _, p := range peers {
		assert.Equal(t, "hello", p.String())
	}
}

func TestRegistry_BroadcastFailureDoesNotStopFanOut(t *testing.T) {
	r := NewRegistry(10, nil)

	sender, _ := newTestClient(1)
	broken, brokenConn := newTestClient(2)
	healthy, healthyConn := newTestClient(3)
	brokenConn.writeErr = errBrokenPipe

	for _, c := range []*Client{sender, broken, healthy} {
		require.True(t, r.Add(c))
	}

	n := r.Broadcast([]byte("msg"), sender)
	assert.Equal(t, 1, n)
	assert.Equal(t, "msg", healthyConn.String())
	// removal belongs to the broken peer's own session
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_CloseAllClosesConnections(t *testing.T) {
	r := NewRegistry(3, nil)
	a, aConn := newTestClient(1)
	b, bConn := newTestClient(2)
	require.True(t, r.Add(a))
	require.True(t, r.Add(b))

	assert.Equal(t, 2, r.CloseAll())
	assert.True(t, aConn.isClosed())
	assert.True(t, bConn.isClosed())
}

func TestRegistry_AddDuplicateIsNotAnAdmission(t *testing.T) {
	r := NewRegistry(2, nil)
	a, _ := newTestClient(1)

	require.True(t, r.Add(a))
	assert.False(t, r.Add(a))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_NonPositiveCapacityMatchesGate(t *testing.T) {
	for _, n := range []int{0, -3} {
		r := NewRegistry(n, nil)
		g := NewGate(n)
		assert.Equal(t, DefaultCapacity, r.Capacity(), n)
		assert.Equal(t, r.Capacity(), g.Capacity(), n)
		assert.Equal(t, g.Capacity(), g.Available(), n)
	}
}
