package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps scratch memory reserved by in-flight events.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxWorkers caps concurrently reconstructed slices across all trackers.
	// If 0, defaults to 1.
	MaxWorkers int64

	// EventsPerSec paces event admission. If 0, unlimited.
	EventsPerSec float64

	// IOLimitBytesPerSec caps archive read/write throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// MemoryLimitError is returned for a reservation that can never fit the
// memory limit.
type MemoryLimitError struct {
	Requested int64
	Limit     int64
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("resource: reservation of %d bytes exceeds memory limit of %d bytes", e.Requested, e.Limit)
}

// Controller enforces a Config.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	workerSem *semaphore.Weighted
	busy      atomic.Int64

	eventLimiter *rate.Limiter
	ioLimiter    *rate.Limiter
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.EventsPerSec > 0 {
		c.eventLimiter = rate.NewLimiter(rate.Limit(cfg.EventsPerSec), 1)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves bytes of scratch memory, blocking until they are
// available or ctx is done. A request above the limit fails at once with
// *MemoryLimitError.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return &MemoryLimitError{Requested: bytes, Limit: c.cfg.MemoryLimitBytes}
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the reserved memory in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireWorker reserves a slice worker slot.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.busy.Add(1)
	return nil
}

// TryAcquireWorker reserves a slice worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workerSem.TryAcquire(1) {
		return false
	}
	c.busy.Add(1)
	return true
}

// ReleaseWorker returns a slice worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.busy.Add(-1)
	c.workerSem.Release(1)
}

// BusyWorkers returns the number of reserved worker slots.
func (c *Controller) BusyWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.busy.Load()
}

// AcquireEvent waits until the event rate allows another event.
func (c *Controller) AcquireEvent(ctx context.Context) error {
	if c == nil || c.eventLimiter == nil {
		return nil
	}
	return c.eventLimiter.Wait(ctx)
}

// AcquireIO waits until the IO limit allows bytes more bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests above the burst; split them.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
