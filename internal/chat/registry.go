package chat

import (
	"log/slog"
	"sync"
	"time"
)

// Registry is the bounded set of live clients. All operations go through mu;
// Broadcast copies the members and writes after releasing it.
type Registry struct {
	mu       sync.Mutex
	clients  map[ClientID]*Client
	capacity int
	logger   *slog.Logger
}

func NewRegistry(capacity int, logger *slog.Logger) *Registry {
	capacity = normalizeCapacity(capacity)
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients:  make(map[ClientID]*Client, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Add inserts c unless the registry is full or c is already a member.
func (r *Registry) Add(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID]; exists {
		return false
	}
	if len(r.clients) >= r.capacity {
		return false
	}
	r.clients[c.ID] = c
	ConnectedClients.Set(float64(len(r.clients)))
	return true
}

// Remove deletes c and reports whether it was present. Removing an absent
// client is a no-op.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return false
	}
	delete(r.clients, c.ID)
	ConnectedClients.Set(float64(len(r.clients)))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Registry) Capacity() int { return r.capacity }

func (r *Registry) Snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast writes payload to every member except from and returns the
// number of successful deliveries. A failed peer is logged and skipped; it
// stays registered until its own session notices.
func (r *Registry) Broadcast(payload []byte, from *Client) int {
	start := time.Now()
	defer func() {
		BroadcastDuration.Observe(time.Since(start).Seconds())
	}()

	delivered := 0
	for _, c := range r.Snapshot() {
		if from != nil && c.ID == from.ID {
			continue
		}
		if err := c.Send(payload); err != nil {
			DeliveriesTotal.WithLabelValues("error").Inc()
			r.logger.Warn("broadcast delivery failed", "client_id", c.ID, "addr", c.Addr, "error", err)
			continue
		}
		DeliveriesTotal.WithLabelValues("ok").Inc()
		delivered++
	}
	return delivered
}

// CloseAll closes every member's connection so blocked reads return. The
// owning sessions still perform removal.
func (r *Registry) CloseAll() int {
	clients := r.Snapshot()
	for _, c := range clients {
		_ = c.Conn.Close()
	}
	return len(clients)
}
