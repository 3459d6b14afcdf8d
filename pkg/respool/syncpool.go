package respool

import "sync"

// syncPool is a generic wrapper over sync.Pool for recycling short-lived,
// frequently-allocated values: here, the *waiter created on every
// Acquire call.
type syncPool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

func newSyncPool[T any](new func() T, reset func(T)) *syncPool[T] {
	sp := &syncPool[T]{reset: reset}
	sp.pool.New = func() any { return new() }
	return sp
}

func (sp *syncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

// Put resets obj and returns it to the pool. Callers must only do this
// once they're certain nothing else still holds a reference to obj.
func (sp *syncPool[T]) Put(obj T) {
	if sp.reset != nil {
		sp.reset(obj)
	}
	sp.pool.Put(obj)
}
