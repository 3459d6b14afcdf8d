package respool

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

// destroyAndCount hands handle to Factory.Destroy and retires its slot in
// count, then tops the pool back up to Min if destroying this handle
// dropped it below the floor.
func (p *Pool) destroyAndCount(handle any) {
	if p.count > 0 {
		p.count--
	}
	p.forgetIdle(handle)
	p.metrics.IncDestroyed()
	p.cfg.Factory.Destroy(handle)
	p.ensureMinimum()
}

// ensureMinimum starts as many creates as needed to bring count up to
// Min. It computes the deficit once rather than re-reading count inside
// the loop, since each startCreate call already reserves a slot by
// incrementing count synchronously.
func (p *Pool) ensureMinimum() {
	if p.draining {
		return
	}
	deficit := p.cfg.Min - p.count
	for i := 0; i < deficit; i++ {
		p.startCreate()
	}
}

// armReaper schedules a reap tick ReapInterval from now if one isn't
// already pending. The timer callback runs on its own goroutine and only
// ever touches p.cmds, never pool state directly, keeping every state
// mutation on the loop goroutine.
func (p *Pool) armReaper() {
	if p.reapArmed || len(p.available) == 0 {
		return
	}
	p.reapArmed = true
	p.reapTimer = time.AfterFunc(p.cfg.ReapInterval, func() {
		p.cmds <- cmdReapTick{}
	})
}

// handleReapTick sweeps the available list for handles that have been
// idle past IdleTimeout, destroying as many as it can without taking
// count below Min, and rearms itself if resources remain that could
// still go idle.
func (p *Pool) handleReapTick(cmdReapTick) {
	p.reapArmed = false

	removable := p.count - p.cfg.Min
	if removable <= 0 {
		p.armReaper()
		return
	}

	now := time.Now()
	kept := make([]slot, 0, len(p.available))
	reaped := 0
	for _, s := range p.available {
		if reaped < removable && !s.expiresAt.After(now) {
			p.logAt(LevelVerbose, "reaping idle handle", zap.Any("handle", s.handle))
			p.metrics.IncReaped()
			if p.count > 0 {
				p.count--
			}
			p.forgetIdle(s.handle)
			p.cfg.Factory.Destroy(s.handle)
			reaped++
			continue
		}
		kept = append(kept, s)
	}
	p.available = kept

	if reaped > 0 {
		p.ensureMinimum()
	}
	p.armReaper()
}

// shutdownNow runs when Close is called: it destroys every idle resource
// and cancels every queued waiter with a draining error. In-use resources
// are left alone and are never destroyed by the pool; once the loop has
// stopped, Release and Destroy return a draining error instead of
// reaching it.
func (p *Pool) shutdownNow() {
	p.draining = true
	for _, s := range p.available {
		p.forgetIdle(s.handle)
		p.cfg.Factory.Destroy(s.handle)
		p.count--
	}
	p.available = nil

	for _, w := range p.waiters {
		w.fulfill(nil, poolerrors.NewDrainingError("pool closed"))
	}
	p.waiters = nil

	if p.reapTimer != nil {
		p.reapTimer.Stop()
	}
}
