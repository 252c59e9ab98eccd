package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	require.NoError(t, c.AcquireMemory(context.Background(), 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 20), context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())
	require.NoError(t, c.AcquireMemory(context.Background(), 20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_MemoryAboveLimit(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	// Fails without waiting, even on a context that never ends.
	err := c.AcquireMemory(context.Background(), 101)
	var limitErr *MemoryLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, int64(101), limitErr.Requested)
	assert.Equal(t, int64(100), limitErr.Limit)
	assert.Zero(t, c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), 100))
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())
	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.Equal(t, int64(2), c.BusyWorkers())
	assert.False(t, c.TryAcquireWorker())

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireMemory(context.Background(), 1))
	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireEvent(context.Background()))
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()
	c.ReleaseMemory(1)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_EventPacing(t *testing.T) {
	c := NewController(Config{EventsPerSec: 1})
	require.NoError(t, c.AcquireEvent(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireEvent(ctx))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	var sink bytes.Buffer

	w := NewRateLimitedWriter(context.Background(), &sink, c)
	n, err := w.Write([]byte("cluster block"))
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	r := NewRateLimitedReader(context.Background(), &sink, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "cluster block", string(got))
}
