package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/andy6609/multimode-tcp-server/internal/acceptor"
)

const Mode = "chat"

// Server admits chat clients through the gate and runs one session per
// client. It implements acceptor.Handler.
type Server struct {
	cfg        Config
	baseLogger *slog.Logger
	logger     *slog.Logger
	reg        *Registry
	gate       *Gate

	nextID   atomic.Uint64
	sessions sync.WaitGroup
}

func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	chatLogger := logger.With("mode", Mode)
	return &Server{
		cfg:        cfg,
		baseLogger: logger,
		logger:     chatLogger,
		reg:        NewRegistry(cfg.Capacity, chatLogger),
		gate:       NewGate(cfg.Capacity),
	}, nil
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Gate() *Gate { return s.gate }

// Serve runs the accept loop on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return acceptor.New(Mode, s, s.baseLogger).Serve(ctx, ln)
}

// Handle blocks until a gate slot is free, registers the client and starts
// its session.
func (s *Server) Handle(ctx context.Context, conn net.Conn) {
	addr := conn.RemoteAddr().String()
	if err := s.gate.Acquire(ctx); err != nil {
		s.logger.Info("admission abandoned", "addr", addr, "error", err)
		_ = conn.Close()
		return
	}

	c := &Client{
		ID:   ClientID(s.nextID.Add(1)),
		Conn: conn,
		Addr: addr,
	}
	if !s.reg.Add(c) {
		RejectedTotal.Inc()
		s.logger.Warn("registry full, rejecting client", "addr", addr, "error", ErrRegistryFull)
		_ = c.Send(rejectMessage)
		_ = conn.Close()
		s.gate.Release()
		return
	}
	s.logger.Info("client connected", "client_id", c.ID, "addr", addr, "connected", s.reg.Len())

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		newSession(c, s.reg, s.gate, s.cfg, s.logger).Run()
	}()
}

// Shutdown closes every client connection and waits for the sessions to
// finish their cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	n := s.reg.CloseAll()
	s.logger.Info("shutting down", "clients", n)

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chat shutdown: %w", ctx.Err())
	}
}
