package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total messages processed by type",
	}, []string{"type"})

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_deliveries_total",
		Help: "Per-peer broadcast deliveries by result",
	}, []string{"result"})

	RejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_total",
		Help: "Connections turned away because the registry was full",
	})

	GateAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_gate_available",
		Help: "Free admission slots",
	})

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_broadcast_seconds",
		Help:    "Time to fan one message out to every peer",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(DeliveriesTotal)
	prometheus.MustRegister(RejectedTotal)
	prometheus.MustRegister(GateAvailable)
	prometheus.MustRegister(BroadcastDuration)
}
