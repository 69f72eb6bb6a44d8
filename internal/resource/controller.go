package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentQueries is the maximum number of queries admitted at once.
	// If 0, queries are unlimited.
	MaxConcurrentQueries int64
}

// Controller admits queries under the configured limit.
type Controller struct {
	cfg Config

	querySem *semaphore.Weighted // nil if unlimited
	active   atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}
	return c
}

// AcquireQuery reserves a query slot, blocking until one is free or ctx ends.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.querySem != nil {
		if err := c.querySem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.active.Add(1)
	return nil
}

// TryAcquireQuery reserves a query slot without blocking.
func (c *Controller) TryAcquireQuery() bool {
	if c == nil {
		return true
	}
	if c.querySem != nil && !c.querySem.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseQuery releases a query slot.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	if c.querySem != nil {
		c.querySem.Release(1)
	}
}

// Active returns the number of admitted queries.
func (c *Controller) Active() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// Limit returns the configured limit (0 if unlimited).
func (c *Controller) Limit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxConcurrentQueries
}
