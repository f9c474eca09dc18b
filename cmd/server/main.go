package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/andy6609/multimode-tcp-server/internal/acceptor"
	"github.com/andy6609/multimode-tcp-server/internal/chat"
	"github.com/andy6609/multimode-tcp-server/internal/job"
	"github.com/andy6609/multimode-tcp-server/internal/logging"
	"github.com/andy6609/multimode-tcp-server/internal/shutdown"
	"github.com/andy6609/multimode-tcp-server/internal/web"
)

const shutdownTimeout = 5 * time.Second

var defaultAddrs = map[string]string{
	chat.Mode: ":8080",
	web.Mode:  ":8081",
	job.Mode:  ":8082",
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [chat|web|job]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", "", "listen address (default :8080 chat, :8081 web, :8082 job)")
	metricsAddr := flag.String("metrics-addr", ":9090", "metrics listen address, empty to disable")
	capacity := flag.Int("capacity", chat.DefaultCapacity, "maximum concurrent chat clients")
	bufferSize := flag.Int("buffer", 0, "read buffer size in bytes (default 1024 chat/job, 2048 web)")
	exitCommand := flag.String("exit-command", chat.DefaultExitCommand, "chat command that ends a session")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "json", "log format: json, text")
	flag.Usage = usage
	flag.Parse()

	mode, err := parseMode(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	logger, err := logging.New(os.Stdout, logging.Options{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *addr == "" {
		*addr = defaultAddrs[mode]
	}

	ctrl := shutdown.New(context.Background())
	defer ctrl.Stop()

	if err := run(ctrl, mode, *addr, *metricsAddr, *capacity, *bufferSize, *exitCommand, logger); err != nil {
		logger.Error("server failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}

func parseMode(arg string) (string, error) {
	switch arg {
	case "", chat.Mode:
		return chat.Mode, nil
	case web.Mode:
		return web.Mode, nil
	case job.Mode, "agendador":
		return job.Mode, nil
	}
	return "", fmt.Errorf("invalid mode %q", arg)
}

func run(ctrl *shutdown.Controller, mode, addr, metricsAddr string, capacity, bufferSize int, exitCommand string, logger *slog.Logger) error {
	var (
		handler acceptor.Handler
		chatSrv *chat.Server
	)
	switch mode {
	case chat.Mode:
		cfg := chat.DefaultConfig()
		cfg.Capacity = capacity
		cfg.ExitCommand = exitCommand
		if bufferSize > 0 {
			cfg.BufferSize = bufferSize
		}
		srv, err := chat.NewServer(cfg, logger)
		if err != nil {
			return err
		}
		chatSrv, handler = srv, srv
	case web.Mode:
		handler = web.NewResponder(bufferSize, logger)
	case job.Mode:
		handler = job.NewResponder(bufferSize, logger)
	}

	ln, err := acceptor.Listen(addr)
	if err != nil {
		return err
	}
	logger.Info("server started", "mode", mode, "addr", ln.Addr().String())

	err = serve(ctrl.Context(), mode, ln, handler, chatSrv, metricsAddr, logger)
	logger.Info("shutting down", "mode", mode, "signalled", ctrl.Triggered())

	if chatSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := chatSrv.Shutdown(sctx); serr != nil {
			logger.Warn("chat sessions did not finish", "error", serr)
		}
	}
	return err
}

// serve runs the mode's accept loop next to the metrics endpoint until ctx
// is cancelled. Only the accept loop can fail the mode.
func serve(ctx context.Context, mode string, ln net.Listener, handler acceptor.Handler, chatSrv *chat.Server, metricsAddr string, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if chatSrv != nil {
			return chatSrv.Serve(ctx, ln)
		}
		return acceptor.New(mode, handler, logger).Serve(ctx, ln)
	})
	if metricsAddr != "" {
		g.Go(func() error {
			if err := serveMetrics(ctx, metricsAddr, logger); err != nil {
				logger.Warn("metrics endpoint unavailable", "mode", mode, "addr", metricsAddr, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stop := context.AfterFunc(ctx, func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	})
	defer stop()

	logger.Info("metrics endpoint started", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
