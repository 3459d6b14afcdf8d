package respool

import (
	"context"
	"time"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

// Acquire blocks until a valid resource is available, the pool's
// AcquireTimeout elapses, ctx is cancelled, or the pool is closed,
// whichever comes first.
func (p *Pool) Acquire(ctx context.Context) (any, error) {
	start := time.Now()
	w := newWaiter(p.nextWaiterID.Add(1))

	select {
	case p.cmds <- cmdAcquire{w: w}:
	case <-p.stopCh:
		return nil, poolerrors.NewDrainingError("pool is closed")
	}

	select {
	case res := <-w.resultCh:
		p.metrics.ObserveAcquireWait(time.Since(start))
		w.release()
		return res.handle, res.err
	case <-ctx.Done():
		select {
		case p.cmds <- cmdCancelWaiter{id: w.id}:
		case <-p.stopCh:
		}
		return nil, ctx.Err()
	case <-p.stopCh:
		return nil, poolerrors.NewDrainingError("pool is closed")
	}
}

// Release returns handle to the pool. Releasing a handle the pool did
// not hand out, or releasing one twice, is a programmer error and is
// reported rather than silently ignored.
func (p *Pool) Release(handle any) error {
	errCh := make(chan error, 1)
	select {
	case p.cmds <- cmdRelease{handle: handle, errCh: errCh}:
	case <-p.stopCh:
		return poolerrors.NewDrainingError("pool is closed")
	}
	select {
	case err := <-errCh:
		return err
	case <-p.stopCh:
		return poolerrors.NewDrainingError("pool is closed")
	}
}

// Destroy retires handle instead of returning it to the available set.
// Like Release, calling it with a handle that isn't currently checked
// out is a programmer error.
func (p *Pool) Destroy(handle any) error {
	errCh := make(chan error, 1)
	select {
	case p.cmds <- cmdDestroy{handle: handle, errCh: errCh}:
	case <-p.stopCh:
		return poolerrors.NewDrainingError("pool is closed")
	}
	select {
	case err := <-errCh:
		return err
	case <-p.stopCh:
		return poolerrors.NewDrainingError("pool is closed")
	}
}

// Drain stops the pool from creating new resources or accepting new
// Acquire calls, then polls Stats at a fixed cadence until the pool is
// fully quiesced: no waiters left, nothing mid-validation, and every
// resource counted in Size sitting in Available — which also rules out
// a create or validation still in flight. It returns ctx.Err() if ctx is
// cancelled before quiescence.
func (p *Pool) Drain(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.cmds <- cmdDrainStart{ack: ack}:
	case <-p.stopCh:
		return nil
	}
	select {
	case <-ack:
	case <-p.stopCh:
		return nil
	}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		s := p.Stats()
		if s.Waiting == 0 && s.UnderValidation == 0 && s.Size == s.Available {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		}
	}
}

// DestroyAllNow forcibly destroys every idle resource and fails every
// queued waiter immediately, without waiting for in-use resources to
// come back. Unlike Drain, the pool remains usable afterward: Acquire
// can still trigger fresh creates up to Max.
func (p *Pool) DestroyAllNow(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.cmds <- cmdDestroyAllNow{done: done}:
	case <-p.stopCh:
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return nil
	}
}
