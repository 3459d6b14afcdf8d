// Package respool implements a generic, concurrency-safe resource pool.
//
// A Pool mediates access to a bounded collection of expensive, reusable
// resources (database connections, sockets, worker handles, ...) between
// many concurrent callers. Callers Acquire a handle, use it exclusively,
// and Release it; the pool caches idle handles, creates new ones on demand
// up to a configured ceiling, enforces a floor of warm handles, validates
// handles before handing them out, retires idle handles past a timeout, and
// supports an orderly Drain or a forced DestroyAllNow.
//
// All pool state is owned by a single internal goroutine (the "loop") that
// processes one command at a time from an internal channel. Every public
// method that acts on the pool is a thin wrapper that sends a command and
// waits for a reply, and the introspection getters read counters the loop
// republishes after each command, so no caller ever touches the pool's
// sets or waiter queue directly — this is the structured-concurrency encoding of the
// single-threaded cooperative scheduler the design assumes: no locks are
// needed because there is only ever one goroutine mutating state.
//
// Basic usage:
//
//	factory := respool.Factory{
//	    Create:  func(ctx context.Context) (any, error) { return dial(ctx) },
//	    Destroy: func(h any) { h.(net.Conn).Close() },
//	    Validate: func(h any) bool { return h.(net.Conn) != nil },
//	}
//	cfg := respool.NewConfig("db", factory)
//	cfg.Min, cfg.Max = 2, 10
//	p, err := respool.New(cfg)
//	...
//	conn, err := p.Acquire(ctx)
//	...
//	p.Release(conn)
//	...
//	p.Drain(ctx)
package respool
