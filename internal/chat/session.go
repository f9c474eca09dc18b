package chat

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Session is the worker for one admitted client. Whatever way Run exits, the
// client is removed from the registry, its socket closed and its gate slot
// released, each exactly once.
type Session struct {
	client *Client
	reg    *Registry
	gate   *Gate
	cfg    Config
	logger *slog.Logger

	closeOnce sync.Once
}

func newSession(c *Client, reg *Registry, gate *Gate, cfg Config, logger *slog.Logger) *Session {
	return &Session{
		client: c,
		reg:    reg,
		gate:   gate,
		cfg:    cfg,
		logger: logger.With("client_id", c.ID, "addr", c.Addr),
	}
}

func (s *Session) Run() {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("session panicked", "panic", p)
		}
		s.close()
	}()

	if err := s.client.Send(s.cfg.welcome()); err != nil {
		s.logger.Warn("send welcome failed", "error", err)
		return
	}

	buf := make([]byte, s.cfg.BufferSize)
	for {
		n, err := s.client.Conn.Read(buf)
		if n > 0 {
			if !s.handle(buf[:n]) {
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client closed connection")
			} else if !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("read failed", "error", err)
			}
			return
		}
	}
}

// handle processes one chunk and reports whether the session continues.
func (s *Session) handle(payload []byte) bool {
	if s.isExit(payload) {
		MessagesTotal.WithLabelValues("exit").Inc()
		if err := s.client.Send(goodbyeMessage); err != nil {
			s.logger.Warn("send goodbye failed", "error", err)
		}
		s.logger.Info("client sent exit command")
		return false
	}

	MessagesTotal.WithLabelValues("broadcast").Inc()
	delivered := s.reg.Broadcast(payload, s.client)
	s.logger.Info("message relayed", "bytes", len(payload), "peers", delivered)
	return true
}

// isExit matches the exit command exactly, ignoring a trailing line ending.
func (s *Session) isExit(payload []byte) bool {
	return string(bytes.TrimRight(payload, "\r\n")) == s.cfg.ExitCommand
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.reg.Remove(s.client)
		if err := s.client.Conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("close failed", "error", err)
		}
		s.gate.Release()
		s.logger.Info("client disconnected", "connected", s.reg.Len())
	})
}
