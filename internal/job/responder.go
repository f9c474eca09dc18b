// Package job acknowledges submitted jobs: it reads one payload and echoes
// it back inside a fixed acknowledgement.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Mode              = "job"
	DefaultBufferSize = 1024
)

var RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "job_requests_total",
	Help: "Jobs acknowledged",
})

func init() {
	prometheus.MustRegister(RequestsTotal)
}

// Acknowledge formats the reply for payload.
func Acknowledge(payload []byte) []byte {
	return fmt.Appendf(nil, "Job received and acknowledged: %s\n", payload)
}

type Responder struct {
	bufferSize int
	logger     *slog.Logger
}

func NewResponder(bufferSize int, logger *slog.Logger) *Responder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{bufferSize: bufferSize, logger: logger.With("mode", Mode)}
}

func (r *Responder) Handle(_ context.Context, conn net.Conn) {
	defer conn.Close()
	addr := conn.RemoteAddr().String()

	buf := make([]byte, r.bufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		r.logger.Info("client sent no job", "addr", addr, "error", err)
		return
	}
	payload := buf[:n]
	r.logger.Info("job received", "addr", addr, "job", string(payload))
	RequestsTotal.Inc()

	if _, err := conn.Write(Acknowledge(payload)); err != nil {
		r.logger.Warn("write acknowledgement failed", "addr", addr, "error", err)
	}
}
