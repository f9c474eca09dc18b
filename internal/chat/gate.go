package chat

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is the admission semaphore sized to the registry capacity. Acquire
// blocks without timeout; only ctx cancellation ends the wait.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	inUse    atomic.Int64
}

func NewGate(capacity int) *Gate {
	capacity = normalizeCapacity(capacity)
	g := &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
	GateAvailable.Set(float64(capacity))
	return g
}

func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.track(1)
	return nil
}

// Release returns one slot. It panics when called more times than Acquire
// succeeded.
func (g *Gate) Release() {
	g.sem.Release(1)
	g.track(-1)
}

func (g *Gate) InUse() int { return int(g.inUse.Load()) }
func (g *Gate) Capacity() int { return int(g.capacity) }
func (g *Gate) Available() int { return int(g.capacity - g.inUse.Load()) }

func (g *Gate) track(delta int64) {
	n := g.inUse.Add(delta)
	GateAvailable.Set(float64(g.capacity - n))
}
