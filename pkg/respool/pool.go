package respool

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/logger"
	"github.com/ajitpratap0/respool/pkg/poolmetrics"
)

// slot is an available resource paired with the time it becomes eligible
// for idle reaping.
type slot struct {
	handle    any
	expiresAt time.Time
}

// Pool mediates access to a bounded collection of resources. The fields
// under "loop-owned state" below are owned exclusively by the loop
// goroutine; nothing outside loop() ever reads or writes them directly.
// Introspection getters read cfg and the atomic counters. Public methods
// communicate with the loop by sending commands over cmds and waiting for
// a reply on a channel embedded in the command.
type Pool struct {
	cfg     Config
	log     *zap.Logger
	metrics *poolmetrics.Collector

	cmds   chan any
	stopCh chan struct{}
	wg     sync.WaitGroup

	nextWaiterID atomic.Uint64

	// introspection counters, written only by the loop, read by anyone.
	aSize            atomic.Int64
	aAvailable       atomic.Int64
	aUsing           atomic.Int64
	aWaiting         atomic.Int64
	aUnderValidation atomic.Int64

	// loop-owned state
	count           int
	available       []slot
	inUse           map[any]struct{}
	underValidation map[any]struct{}
	waiters         []*waiter
	inFlightCreates int
	draining        bool

	// idleSince tracks when each handle first went idle, consulted by
	// newExpiry when Config.RefreshIdle is false.
	idleSince map[any]time.Time

	reapTimer *time.Timer
	reapArmed bool
}

// Stats is a point-in-time snapshot of the pool's introspection counters.
type Stats struct {
	Size            int
	Available       int
	Using           int
	Waiting         int
	UnderValidation int
	MaxSize         int
	MinSize         int
	Name            string
}

// New constructs a Pool from cfg. Construction fails synchronously with a
// poolerrors KindConfig error if cfg is invalid.
//
// The minimum floor is not pre-warmed here: ensureMinimum only runs
// lazily after the first destroy event. A caller that wants Min resources
// available immediately should Acquire and Release Min handles once
// after New returns.
func New(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:             cfg,
		log:             logger.Get().With(zap.String("pool", cfg.Name)),
		metrics:         poolmetrics.NewCollector(cfg.Name),
		cmds:            make(chan any, 64),
		stopCh:          make(chan struct{}),
		inUse:           make(map[any]struct{}),
		underValidation: make(map[any]struct{}),
		idleSince:       make(map[any]time.Time),
	}
	p.wg.Add(1)
	go p.loop()
	return p, nil
}

// Close stops the pool's loop goroutine after destroying every available
// resource, the same way DestroyAllNow does. It does not wait for in-use
// resources to be released. Close is idempotent; calling it more than
// once is a no-op. Long-lived Pools are normally never closed, but tests
// and short-lived pools need a way to stop the loop goroutine.
func (p *Pool) Close() {
	select {
	case <-p.stopCh:
		return
	default:
	}
	close(p.stopCh)
	p.wg.Wait()
	p.metrics.Close()
}

// Name returns the pool's diagnostic label.
func (p *Pool) Name() string { return p.cfg.Name }

// MaxSize returns the configured ceiling.
func (p *Pool) MaxSize() int { return p.cfg.Max }

// MinSize returns the configured floor.
func (p *Pool) MinSize() int { return p.cfg.Min }

// Size returns the total number of resources alive or being created.
func (p *Pool) Size() int { return int(p.aSize.Load()) }

// Available returns the number of idle resources ready to be dispensed.
func (p *Pool) Available() int { return int(p.aAvailable.Load()) }

// Using returns the number of resources currently checked out.
func (p *Pool) Using() int { return int(p.aUsing.Load()) }

// Waiting returns the number of Acquire calls currently blocked.
func (p *Pool) Waiting() int { return int(p.aWaiting.Load()) }

// UnderValidation returns the number of resources temporarily removed
// from the available set for asynchronous validation.
func (p *Pool) UnderValidation() int { return int(p.aUnderValidation.Load()) }

// Stats returns a consistent-enough snapshot of every introspection
// counter in one call. Because each field is its own atomic, Stats is not
// a single atomic read; under concurrent mutation the fields may not all
// reflect exactly the same instant, which is fine for the monitoring use
// Stats exists for.
func (p *Pool) Stats() Stats {
	return Stats{
		Size:            p.Size(),
		Available:       p.Available(),
		Using:           p.Using(),
		Waiting:         p.Waiting(),
		UnderValidation: p.UnderValidation(),
		MaxSize:         p.cfg.Max,
		MinSize:         p.cfg.Min,
		Name:            p.cfg.Name,
	}
}

// updateAtomics republishes the loop-owned counters for lock-free reads.
// Called by loop() after every command, and records the same snapshot to
// the metrics collector.
func (p *Pool) updateAtomics() {
	p.aSize.Store(int64(p.count))
	p.aAvailable.Store(int64(len(p.available)))
	p.aUsing.Store(int64(len(p.inUse)))
	p.aWaiting.Store(int64(len(p.waiters)))
	p.aUnderValidation.Store(int64(len(p.underValidation)))
	p.metrics.Observe(poolmetrics.Snapshot{
		Size:            p.count,
		Available:       len(p.available),
		Using:           len(p.inUse),
		Waiting:         len(p.waiters),
		UnderValidation: len(p.underValidation),
	})
}

// logAt routes a diagnostic message to Config.LogFunc if set, otherwise
// to the zap logger if Config.Log is enabled, otherwise nowhere. This is
// the single chokepoint implementing the "boolean or callback" log
// collaborator.
func (p *Pool) logAt(level LogLevel, msg string, fields ...zap.Field) {
	if p.cfg.LogFunc != nil {
		p.cfg.LogFunc(level, msg, fields...)
		return
	}
	if !p.cfg.Log {
		return
	}
	switch level {
	case LevelVerbose:
		p.log.Debug(msg, fields...)
	case LevelInfo:
		p.log.Info(msg, fields...)
	case LevelWarn:
		p.log.Warn(msg, fields...)
	case LevelError:
		p.log.Error(msg, fields...)
	}
}

// loop is the pool's single mutator. Every external event — Acquire,
// Release, Destroy, Drain, DestroyAllNow, a factory callback, a
// validation callback, or a reaper/waiter-timeout tick — arrives here as
// a command and is processed to completion before the next command is
// read, so no operation holds the pool's logical lock across a
// suspension point: suspension happens only between loop iterations,
// never within one.
func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		select {
		case cmd := <-p.cmds:
			p.handle(cmd)
			p.updateAtomics()
		case <-p.stopCh:
			p.shutdownNow()
			p.updateAtomics()
			return
		}
	}
}

func (p *Pool) handle(cmd any) {
	switch c := cmd.(type) {
	case cmdAcquire:
		p.handleAcquire(c)
	case cmdRelease:
		p.handleRelease(c)
	case cmdDestroy:
		p.handleDestroy(c)
	case cmdDrainStart:
		p.handleDrainStart(c)
	case cmdDestroyAllNow:
		p.handleDestroyAllNow(c)
	case cmdCreateDone:
		p.handleCreateDone(c)
	case cmdValidateDone:
		p.handleValidateDone(c)
	case cmdWaiterTimeout:
		p.handleWaiterTimeout(c)
	case cmdCancelWaiter:
		p.handleCancelWaiter(c)
	case cmdReapTick:
		p.handleReapTick(c)
	}
}
