package acceptor

import "github.com/prometheus/client_golang/prometheus"

var (
	AcceptedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acceptor_accepted_total",
		Help: "Connections accepted per mode",
	}, []string{"mode"})

	AcceptErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acceptor_accept_errors_total",
		Help: "Transient accept failures per mode",
	}, []string{"mode"})
)

func init() {
	prometheus.MustRegister(AcceptedTotal)
	prometheus.MustRegister(AcceptErrorsTotal)
}
