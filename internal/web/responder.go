// Package web is the single-exchange HTTP stub: one read, one fixed reply,
// close. Only the GET method prefix is inspected.
package web

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Mode              = "web"
	DefaultBufferSize = 2048
)

var (
	okResponse         = []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nGET request received successfully!\n")
	badRequestResponse = []byte("HTTP/1.1 400 Bad Request\r\nContent-Type: text/plain\r\n\r\nRequest not supported.\n")
	getPrefix          = []byte("GET ")
)

var RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "web_requests_total",
	Help: "HTTP stub requests by response status",
}, []string{"status"})

func init() {
	prometheus.MustRegister(RequestsTotal)
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

// Respond picks the reply for a raw request.
func Respond(request []byte) (status int, reply []byte) {
	if bytes.HasPrefix(request, getPrefix) {
		return 200, okResponse
	}
	return 400, badRequestResponse
}

func (r *Responder) Handle(_ context.Context, conn net.Conn) {
	defer conn.Close()
	addr := conn.RemoteAddr().String()

	buf := make([]byte, r.bufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		r.logger.Info("client sent no request", "addr", addr, "error", err)
		return
	}
	request := buf[:n]
	r.logger.Info("request received", "addr", addr, "request", string(request))

	status, reply := Respond(request)
	RequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	if _, err := conn.Write(reply); err != nil {
		r.logger.Warn("write response failed", "addr", addr, "error", err)
	}
}
