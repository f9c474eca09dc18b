package chat

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
)

// fakeConn records writes in memory. Reads block until Close unless read is set.
type fakeConn struct {
	net.Conn

	mu       sync.Mutex
	buf      bytes.Buffer
	writeErr error
	closed   bool
	closeCh  chan struct{}
	read     func(p []byte) (int, error)
}

func newFakeConn() *fakeConn {
	return &fakeConn{closeCh: make(chan struct{})}
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, net.ErrClosed
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.buf.Write(p)
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.read != nil {
		return f.read(p)
	}
	<-f.closeCh
	return 0, io.EOF
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return net.ErrClosed
	}
	f.closed = true
	close(f.closeCh)
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (f *fakeConn) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var errBrokenPipe = errors.New("broken pipe")
