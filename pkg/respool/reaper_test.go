package respool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPool_IdleReaping verifies a resource idle past IdleTimeout gets
// destroyed by the reaper without anyone calling Acquire again.
func TestPool_IdleReaping(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("reap", f.factory())
	cfg.Max = 2
	cfg.IdleTimeout = 30 * time.Millisecond
	cfg.ReapInterval = 10 * time.Millisecond
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(h))

	assert.Eventually(t, func() bool { return p.Available() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), f.destroyed.Load())
}

// TestPool_IdleReapingRespectsMin verifies the reaper never takes Size
// below Min.
func TestPool_IdleReapingRespectsMin(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("reap-min", f.factory())
	cfg.Min = 1
	cfg.Max = 2
	cfg.IdleTimeout = 10 * time.Millisecond
	cfg.ReapInterval = 5 * time.Millisecond
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(h))

	time.Sleep(100 * time.Millisecond)
	assert.GreaterOrEqual(t, p.Size(), cfg.Min)
}

// TestPool_FIFOWaiterOrder checks waiters are satisfied in the order
// they called Acquire.
func TestPool_FIFOWaiterOrder(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("fifo", f.factory())
	cfg.Max = 1
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)

	order := make(chan int, 2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()
			if _, err := p.Acquire(ctx); err == nil {
				order <- i
			}
		}()
		time.Sleep(10 * time.Millisecond)
	}

	require.NoError(t, p.Release(h))

	first := <-order
	assert.Equal(t, 0, first)
	time.Sleep(350 * time.Millisecond) // let the second Acquire's ctx expire cleanly
}
