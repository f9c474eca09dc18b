// Package acceptor implements the accept loop shared by every server mode.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
)

var ErrNoHandler = errors.New("acceptor: nil handler")

// Handler serves one accepted connection. It runs inline in the accept loop;
// handlers that need a worker per connection start it themselves.
type Handler interface {
	Handle(ctx context.Context, conn net.Conn)
}

type HandlerFunc func(ctx context.Context, conn net.Conn)

func (f HandlerFunc) Handle(ctx context.Context, conn net.Conn) { f(ctx, conn) }

// Listen binds addr. Failures here are setup errors and fatal for the mode.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

type Acceptor struct {
	mode    string
	handler Handler
	logger  *slog.Logger
}

func New(mode string, handler Handler, logger *slog.Logger) *Acceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acceptor{
		mode:    mode,
		handler: handler,
		logger:  logger.With("mode", mode),
	}
}

// Serve accepts until ctx is cancelled or ln is closed. The listener is
// closed when ctx is done so a blocked Accept returns.
func (a *Acceptor) Serve(ctx context.Context, ln net.Listener) error {
	if a.handler == nil {
		return ErrNoHandler
	}

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	a.logger.Info("accepting connections", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				a.logger.Info("accept loop stopped")
				return nil
			}
			AcceptErrorsTotal.WithLabelValues(a.mode).Inc()
			a.logger.Warn("accept failed", "error", err)
			continue
		}

		AcceptedTotal.WithLabelValues(a.mode).Inc()
		a.logger.Debug("connection accepted", "addr", conn.RemoteAddr().String())
		a.handler.Handle(ctx, conn)
	}
}
