package respool

import "go.uber.org/zap"

// dispense is the central decision procedure, invoked after every state
// change. It is always called with pool state consistent and never calls
// itself: in async-validate mode the walk of the available list continues
// when handleValidateDone, run for a command read from the channel, calls
// dispense again. Either way it stays single-threaded, since dispense is
// only ever called from inside handle(), which only ever runs on the
// loop goroutine.
func (p *Pool) dispense() {
	if len(p.waiters) == 0 {
		return
	}

	if p.cfg.Factory.async() {
		p.dispenseAsync()
	} else {
		p.dispenseSync()
	}

	if !p.draining && len(p.waiters) > 0 && p.count < p.cfg.Max {
		p.startCreate()
	}
}

// dispenseSync implements the synchronous-validate mode: walk the
// available list from the head, destroying invalid handles as it goes,
// and deliver the first valid one to the head waiter.
func (p *Pool) dispenseSync() {
	for {
		s, ok := p.popAvailableHead()
		if !ok {
			return
		}
		if !p.cfg.Factory.Validate(s.handle) {
			p.logAt(LevelVerbose, "validate rejected idle handle", zap.Any("handle", s.handle))
			p.destroyAndCount(s.handle)
			continue
		}
		w, ok := p.popWaiterHead()
		if !ok {
			// Nothing to deliver to; put it back and stop. dispense only
			// calls this with a waiter queued and no other command runs
			// on the loop in between, so this branch is defensive.
			p.insertAvailable(s.handle, s.expiresAt)
			p.armReaper()
			return
		}
		p.inUse[s.handle] = struct{}{}
		w.fulfill(s.handle, nil)
		return
	}
}

// dispenseAsync implements the asynchronous-validate mode. It removes
// exactly one available slot per call (the walk continues via the
// recursive dispense() calls inside handleValidateDone, not by looping
// here), since the handle's validity is not known until the
// ValidateAsync callback fires.
func (p *Pool) dispenseAsync() {
	s, ok := p.popAvailableHead()
	if !ok {
		return
	}
	p.underValidation[s.handle] = struct{}{}
	expiresAt := s.expiresAt
	handle := s.handle
	p.cfg.Factory.ValidateAsync(handle, func(valid bool) {
		p.cmds <- cmdValidateDone{handle: handle, valid: valid, expiresAt: expiresAt}
	})
}
