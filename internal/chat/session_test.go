package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_PanicStillReleasesResources(t *testing.T) {
	srv, err := NewServer(Config{Capacity: 1, BufferSize: 16, ExitCommand: "SAIR"}, nil)
	require.NoError(t, err)

	conn := newFakeConn()
	conn.read = func([]byte) (int, error) { panic("boom") }

	srv.Handle(context.Background(), conn)

	require.Eventually(t, func() bool {
		return srv.Registry().Len() == 0 && srv.Gate().Available() == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, conn.isClosed())
	assert.Contains(t, conn.String(), "Welcome")
}

func TestSession_CloseRunsOnce(t *testing.T) {
	reg := NewRegistry(1, nil)
	gate := NewGate(1)
	require.NoError(t, gate.Acquire(context.Background()))

	c, conn := newTestClient(7)
	require.True(t, reg.Add(c))

	s := newSession(c, reg, gate, DefaultConfig(), reg.logger)
	s.close()
	// a second release would panic inside the semaphore
	assert.NotPanics(t, s.close)

	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1, gate.Available())
	assert.True(t, conn.isClosed())
}

func TestSession_RegistryFullRejectsWithMessage(t *testing.T) {
	srv, err := NewServer(Config{Capacity: 1, BufferSize: 16, ExitCommand: "SAIR"}, nil)
	require.NoError(t, err)

	// occupy the only registry slot without holding the gate
	squatter, _ := newTestClient(999)
	require.True(t, srv.Registry().Add(squatter))

	conn := newFakeConn()
	srv.Handle(context.Background(), conn)

	assert.Equal(t, string(rejectMessage), conn.String())
	assert.True(t, conn.isClosed())
	assert.Equal(t, 1, srv.Gate().Available())
}
