package respool

import "context"

// CreateFunc produces a new handle. It may fail; a failure is delivered to
// at most one waiter (the head of the queue at the time the failure is
// observed) and never leaks the pool's reservation of the slot it occupied.
type CreateFunc func(ctx context.Context) (any, error)

// DestroyFunc tears a handle down. It is best-effort: the pool swallows
// whatever happens here, since there is nothing useful to do with a
// destroy failure.
type DestroyFunc func(handle any)

// ValidateFunc synchronously reports whether a handle is still usable. It
// must never mutate the handle observably.
type ValidateFunc func(handle any) bool

// ValidateAsyncFunc asynchronously reports whether a handle is still
// usable, invoking done exactly once with the result. It must never mutate
// the handle observably.
type ValidateAsyncFunc func(handle any, done func(valid bool))

// Factory is the capability record the pool drives to create, destroy, and
// validate handles. Exactly one of Validate or ValidateAsync must be set —
// it is a tagged sum over the two validation modes, not a duck-typed
// interface, so a pool's validation mode is a fixed property of its
// factory rather than something discovered at call time.
type Factory struct {
	Create        CreateFunc
	Destroy       DestroyFunc
	Validate      ValidateFunc
	ValidateAsync ValidateAsyncFunc
}

func (f Factory) validate() error {
	if f.Create == nil {
		return newConfigErr("factory.Create is required")
	}
	if f.Destroy == nil {
		return newConfigErr("factory.Destroy is required")
	}
	if f.Validate == nil && f.ValidateAsync == nil {
		return newConfigErr("factory.Validate or factory.ValidateAsync is required")
	}
	if f.Validate != nil && f.ValidateAsync != nil {
		return newConfigErr("factory.Validate and factory.ValidateAsync are mutually exclusive")
	}
	return nil
}

func (f Factory) async() bool {
	return f.ValidateAsync != nil
}
