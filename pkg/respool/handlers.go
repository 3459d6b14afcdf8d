package respool

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

// destroyAllConcurrency bounds how many Factory.Destroy calls
// handleDestroyAllNow runs at once; a Destroy that closes a real
// connection is I/O-bound and benefits from running concurrently with
// its siblings even though the loop goroutine blocks until they're all
// done.
const destroyAllConcurrency = 8

// handleAcquire enqueues a waiter and arms its deadline timer, if any,
// before letting the dispenser try to satisfy it immediately.
func (p *Pool) handleAcquire(c cmdAcquire) {
	if p.draining {
		c.w.fulfill(nil, poolerrors.NewDrainingError("pool is draining"))
		return
	}
	p.enqueueWaiter(c.w)
	if p.cfg.AcquireTimeout > 0 {
		id := c.w.id
		c.w.timer = time.AfterFunc(p.cfg.AcquireTimeout, func() {
			p.cmds <- cmdWaiterTimeout{id: id}
		})
	}
	p.dispense()
}

// handleRelease returns handle to the available set, unless it isn't
// actually checked out, in which case it's a double- or foreign-release
// and gets reported as a ProgrammerError rather than mutating state.
func (p *Pool) handleRelease(c cmdRelease) {
	if _, ok := p.inUse[c.handle]; !ok {
		var err *poolerrors.Error
		if p.containsAvailable(c.handle) {
			err = poolerrors.NewProgrammerError("handle released twice")
		} else {
			err = poolerrors.NewProgrammerError("handle released but not acquired from this pool")
		}
		p.logAt(LevelError, "rejecting release", zap.Any("handle", c.handle), zap.String("kind", string(err.Kind)))
		c.errCh <- err
		return
	}
	delete(p.inUse, c.handle)
	p.insertAvailable(c.handle, p.newExpiry(c.handle))
	p.armReaper()
	c.errCh <- nil
	p.dispense()
}

// handleDestroy retires an in-use handle instead of returning it to the
// available set, for callers that know a resource is no longer good.
func (p *Pool) handleDestroy(c cmdDestroy) {
	if _, ok := p.inUse[c.handle]; !ok {
		err := poolerrors.NewProgrammerError("destroy called on a handle not currently in use")
		p.logAt(LevelError, "rejecting destroy", zap.Any("handle", c.handle))
		c.errCh <- err
		return
	}
	delete(p.inUse, c.handle)
	p.destroyAndCount(c.handle)
	c.errCh <- nil
	p.dispense()
}

// handleDrainStart flips the pool into draining mode, which stops new
// creates and fails new Acquire calls. It does not itself wait for
// in-use resources to come back; the public Drain method polls Stats
// for quiescence after this returns.
func (p *Pool) handleDrainStart(c cmdDrainStart) {
	p.draining = true
	close(c.ack)
}

// handleDestroyAllNow immediately destroys every idle resource and fails
// every queued waiter, without waiting for in-use resources or touching
// the under-validation set (one of the documented open-question
// decisions: a validation already in flight is left to finish on its own
// and is simply revalidated and reinserted when handleValidateDone runs,
// since this call never flips draining — the pool stays usable after).
func (p *Pool) handleDestroyAllNow(c cmdDestroyAllNow) {
	g := new(errgroup.Group)
	g.SetLimit(destroyAllConcurrency)
	for _, s := range p.available {
		s := s
		p.forgetIdle(s.handle)
		p.metrics.IncDestroyed()
		g.Go(func() error {
			p.cfg.Factory.Destroy(s.handle)
			return nil
		})
	}
	_ = g.Wait()
	p.count -= len(p.available)
	if p.count < 0 {
		p.count = 0
	}
	p.available = nil

	for _, w := range p.waiters {
		w.fulfill(nil, poolerrors.NewDrainingError("pool destroyed"))
	}
	p.waiters = nil

	close(c.done)
}

// handleValidateDone resumes the asynchronous-validate walk of the
// available list: an invalid handle is destroyed, a valid one goes
// either straight to the head waiter or back into the available set,
// and either way dispense() is called again so the next available slot
// (if any) gets its turn.
func (p *Pool) handleValidateDone(c cmdValidateDone) {
	delete(p.underValidation, c.handle)

	if !c.valid {
		p.logAt(LevelVerbose, "async validate rejected idle handle", zap.Any("handle", c.handle))
		p.destroyAndCount(c.handle)
		p.dispense()
		return
	}

	if p.draining {
		p.destroyAndCount(c.handle)
		p.dispense()
		return
	}

	if w, ok := p.popWaiterHead(); ok {
		p.inUse[c.handle] = struct{}{}
		w.fulfill(c.handle, nil)
	} else {
		p.insertAvailable(c.handle, c.expiresAt)
		p.armReaper()
	}
	p.dispense()
}

// handleWaiterTimeout fails a waiter whose AcquireTimeout elapsed before
// the dispenser could satisfy it. Removal is keyed by id so a waiter
// already popped by dispense() in the meantime is left alone.
func (p *Pool) handleWaiterTimeout(c cmdWaiterTimeout) {
	if w, ok := p.removeWaiterByID(c.id); ok {
		p.metrics.IncTimeout()
		w.fulfill(nil, poolerrors.NewTimeoutError("acquire timed out waiting for an available resource"))
	}
}

// handleCancelWaiter removes a waiter whose caller gave up via context
// cancellation. If the waiter was already fulfilled by a concurrent
// dispense, the handle it was given is not recoverable here; the caller
// that abandoned its context is responsible for that loss, the same way
// a stray Release would be.
func (p *Pool) handleCancelWaiter(c cmdCancelWaiter) {
	p.removeWaiterByID(c.id)
}
