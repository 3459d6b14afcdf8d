package respool

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

// startCreate drives the creation pipeline. It pre-reserves the slot by
// incrementing count before the factory even runs, so a second
// dispense() racing in before this create completes sees the reservation
// and won't over-create past Max.
func (p *Pool) startCreate() {
	p.count++
	p.inFlightCreates++
	p.logAt(LevelVerbose, "starting create", zap.Int("count", p.count))

	go func() {
		handle, err := p.cfg.Factory.Create(context.Background())
		p.cmds <- cmdCreateDone{handle: handle, err: err}
	}()
}

// handleCreateDone routes a completed (possibly failed) create back into
// the dispenser. Every branch ends by calling dispense() again, which is
// how the pool converges on Max through recursive invocation rather than
// bursting every waiter's worth of creates up front.
func (p *Pool) handleCreateDone(c cmdCreateDone) {
	p.inFlightCreates--

	if c.err != nil {
		if p.count > 0 {
			p.count--
		}
		p.metrics.IncFactoryError()
		p.logAt(LevelWarn, "factory create failed", zap.Error(c.err))
		if w, ok := p.popWaiterHead(); ok {
			w.fulfill(nil, poolerrors.NewFactoryError(c.err))
		}
		p.dispense()
		return
	}

	p.metrics.IncCreated()
	if w, ok := p.popWaiterHead(); ok {
		p.inUse[c.handle] = struct{}{}
		w.fulfill(c.handle, nil)
	} else {
		p.insertAvailable(c.handle, p.newExpiry(c.handle))
		p.armReaper()
	}
	p.dispense()
}
