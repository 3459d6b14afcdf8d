package respool

import "time"

// insertAvailable adds a slot at the head or tail per ReturnToHead
// (invariant 7: "the dispenser consumes from the head" regardless of
// which end insertion happens at).
func (p *Pool) insertAvailable(handle any, expiresAt time.Time) {
	s := slot{handle: handle, expiresAt: expiresAt}
	if p.cfg.ReturnToHead {
		p.available = append([]slot{s}, p.available...)
	} else {
		p.available = append(p.available, s)
	}
}

// popAvailableHead removes and returns the head slot, or ok=false if the
// available set is empty.
func (p *Pool) popAvailableHead() (slot, bool) {
	if len(p.available) == 0 {
		return slot{}, false
	}
	s := p.available[0]
	p.available = p.available[1:]
	return s, true
}

// containsAvailable reports whether handle is currently in the available
// set, used by release to detect a double-release.
func (p *Pool) containsAvailable(handle any) bool {
	for _, s := range p.available {
		if s.handle == handle {
			return true
		}
	}
	return false
}

// newExpiry computes the expires_at for handle entering the available
// set right now, honouring RefreshIdle: when false, a handle that has
// gone idle before keeps counting from the first time, not this time.
func (p *Pool) newExpiry(handle any) time.Time {
	now := time.Now()
	if since, ok := p.idleSince[handle]; ok && !p.cfg.RefreshIdle {
		return since.Add(p.cfg.IdleTimeout)
	}
	p.idleSince[handle] = now
	return now.Add(p.cfg.IdleTimeout)
}

// forgetIdle drops handle's idle bookkeeping, called whenever it is
// permanently destroyed so idleSince doesn't leak.
func (p *Pool) forgetIdle(handle any) {
	delete(p.idleSince, handle)
}
