package respool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

type countingFactory struct {
	created   atomic.Int64
	destroyed atomic.Int64
}

func (f *countingFactory) factory() Factory {
	return Factory{
		Create: func(ctx context.Context) (any, error) {
			n := f.created.Add(1)
			return &n, nil
		},
		Destroy: func(handle any) {
			f.destroyed.Add(1)
		},
		Validate: func(handle any) bool { return true },
	}
}

func newTestPool(t *testing.T, cfg Config) *Pool {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPool_AcquireRelease_Basic(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("basic", f.factory())
	cfg.Max = 2
	p := newTestPool(t, cfg)

	ctx := context.Background()
	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 1, p.Using())

	require.NoError(t, p.Release(h))
	assert.Eventually(t, func() bool { return p.Using() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, p.Available())
}

// TestPool_MaxCap verifies Size never exceeds Max even under contention
// from more concurrent acquirers than Max allows.
func TestPool_MaxCap(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("maxcap", f.factory())
	cfg.Max = 3
	cfg.AcquireTimeout = 2 * time.Second
	p := newTestPool(t, cfg)

	const workers = 10
	var wg sync.WaitGroup
	var maxObserved atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			h, err := p.Acquire(ctx)
			if err != nil {
				return
			}
			if cur := int64(p.Using()); cur > maxObserved.Load() {
				maxObserved.Store(cur)
			}
			time.Sleep(10 * time.Millisecond)
			_ = p.Release(h)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, int(maxObserved.Load()), 3)
	assert.LessOrEqual(t, p.Size(), 3)
}

func TestPool_CreationError(t *testing.T) {
	f := Factory{
		Create:   func(ctx context.Context) (any, error) { return nil, fmt.Errorf("dial refused") },
		Destroy:  func(handle any) {},
		Validate: func(handle any) bool { return true },
	}
	cfg := NewConfig("createerr", f)
	cfg.Max = 2
	p := newTestPool(t, cfg)

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, poolerrors.IsFactory(err))
}

func TestPool_ValidationRejectsIdle(t *testing.T) {
	f := &countingFactory{}
	var rejectNext atomic.Bool
	factory := f.factory()
	factory.Validate = func(handle any) bool {
		return !rejectNext.Swap(false)
	}
	cfg := NewConfig("validate", factory)
	cfg.Max = 1
	p := newTestPool(t, cfg)

	ctx := context.Background()
	h1, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Release(h1))
	assert.Eventually(t, func() bool { return p.Available() == 1 }, time.Second, time.Millisecond)

	rejectNext.Store(true)
	h2, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, h2)

	assert.Equal(t, int64(2), f.created.Load())
	assert.Equal(t, int64(1), f.destroyed.Load())
}

func TestPool_AsyncValidate(t *testing.T) {
	f := &countingFactory{}
	base := f.factory()
	factory := Factory{
		Create:  base.Create,
		Destroy: base.Destroy,
		ValidateAsync: func(handle any, done func(valid bool)) {
			go done(true)
		},
	}
	cfg := NewConfig("async", factory)
	cfg.Max = 1
	p := newTestPool(t, cfg)

	ctx := context.Background()
	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Release(h))

	h2, err := p.Acquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, h2)
	assert.Equal(t, int64(1), f.created.Load())
}

func TestPool_DrainQuiescence(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("drain", f.factory())
	cfg.Max = 1
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)

	drained := make(chan error, 1)
	go func() {
		drained <- p.Drain(context.Background())
	}()

	select {
	case <-drained:
		t.Fatal("Drain returned before the in-use handle was released")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, p.Release(h))
	require.NoError(t, <-drained)
}

func TestPool_DrainRejectsNewAcquires(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("drain-reject", f.factory())
	cfg.Max = 2
	p := newTestPool(t, cfg)

	require.NoError(t, p.Drain(context.Background()))

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, poolerrors.IsDraining(err))
}

func TestPool_DoubleRelease(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("double", f.factory())
	cfg.Max = 1
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(h))

	err = p.Release(h)
	require.Error(t, err)
	assert.True(t, poolerrors.IsKind(err, poolerrors.KindProgrammer))
}

func TestPool_ForeignRelease(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("foreign", f.factory())
	cfg.Max = 1
	p := newTestPool(t, cfg)

	var notMine int
	err := p.Release(&notMine)
	require.Error(t, err)
	assert.True(t, poolerrors.IsKind(err, poolerrors.KindProgrammer))
}

func TestPool_AcquireTimeout(t *testing.T) {
	block := make(chan struct{})
	f := Factory{
		Create: func(ctx context.Context) (any, error) {
			<-block
			return new(int), nil
		},
		Destroy:  func(handle any) {},
		Validate: func(handle any) bool { return true },
	}
	cfg := NewConfig("timeout", f)
	cfg.Max = 1
	cfg.AcquireTimeout = 20 * time.Millisecond
	p := newTestPool(t, cfg)
	defer close(block)

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, poolerrors.IsTimeout(err))
}

func TestPool_DestroyAllNow(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("destroyall", f.factory())
	cfg.Max = 3
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(h))
	assert.Eventually(t, func() bool { return p.Available() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, p.DestroyAllNow(context.Background()))
	assert.Equal(t, 0, p.Available())

	h2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h2)
}

func TestPool_MinFloorReplenishedAfterDestroy(t *testing.T) {
	f := &countingFactory{}
	cfg := NewConfig("minfloor", f.factory())
	cfg.Min = 1
	cfg.Max = 2
	p := newTestPool(t, cfg)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Destroy(h))

	assert.Eventually(t, func() bool { return p.Size() >= cfg.Min }, time.Second, time.Millisecond)
}
