package respool

// enqueueWaiter appends w to the tail of the FIFO queue.
func (p *Pool) enqueueWaiter(w *waiter) {
	p.waiters = append(p.waiters, w)
}

// popWaiterHead removes and returns the longest-waiting waiter, or
// ok=false if none are queued.
func (p *Pool) popWaiterHead() (*waiter, bool) {
	if len(p.waiters) == 0 {
		return nil, false
	}
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	return w, true
}

// removeWaiterByID removes a specific waiter from the queue (used by
// deadline expiry and caller-side cancellation) and reports whether it
// was found. A waiter that is not found was already popped and fulfilled
// by some other path; removal is then a no-op, which is what keeps a
// waiter "fulfilled exactly once" (invariant 4) even when a timeout and a
// dispense race.
func (p *Pool) removeWaiterByID(id uint64) (*waiter, bool) {
	for i, w := range p.waiters {
		if w.id == id {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return w, true
		}
	}
	return nil, false
}
