// Package shutdown owns the process-wide stop flag. A termination signal only
// sets the flag and cancels the shared context; teardown runs on the normal
// control path once the accept loops have returned.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	triggered atomic.Bool
	once      sync.Once
	sigCh     chan os.Signal
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// New starts watching sigs (SIGINT and SIGTERM when none given).
func New(parent context.Context, sigs ...os.Signal) *Controller {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		ctx:    ctx,
		cancel: cancel,
		sigCh:  make(chan os.Signal, 1),
		stopCh: make(chan struct{}),
	}
	signal.Notify(c.sigCh, sigs...)

	go func() {
		select {
		case <-c.sigCh:
			c.Trigger()
		case <-ctx.Done():
			c.Trigger()
		case <-c.stopCh:
		}
	}()
	return c
}

// Context is cancelled once the flag is set.
func (c *Controller) Context() context.Context {
	return c.ctx
}

func (c *Controller) Triggered() bool {
	return c.triggered.Load()
}

// Trigger sets the flag. Only the first call has any effect.
func (c *Controller) Trigger() {
	c.once.Do(func() {
		c.triggered.Store(true)
		c.cancel()
	})
}

// Stop releases signal delivery. The flag is left as it is.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		signal.Stop(c.sigCh)
		close(c.stopCh)
	})
}
