package chat

import "net"

// ClientID identifies one admitted connection for its whole lifetime.
type ClientID uint64

// Client is the handle for one accepted socket. The session goroutine owns
// Conn; the registry only keeps a reference for fan-out.
type Client struct {
	ID   ClientID
	Conn net.Conn
	Addr string
}

func (c *Client) Send(p []byte) error {
	_, err := c.Conn.Write(p)
	return err
}

var (
	ErrRegistryFull  = errorString("registry_full")
	ErrInvalidConfig = errorString("invalid_config")
)

type errorString string

func (e errorString) Error() string { return string(e) }
