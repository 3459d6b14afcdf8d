package respool

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

// LogLevel is the level a Config.LogFunc is invoked at, matching the four
// levels the log collaborator contract defines.
type LogLevel int

const (
	// LevelVerbose is the most chatty level, used for per-dispense tracing.
	LevelVerbose LogLevel = iota
	// LevelInfo is for normal lifecycle events. The pool logs its own
	// create, validate and reap events at LevelVerbose and emits nothing
	// at LevelInfo.
	LevelInfo
	// LevelWarn covers unusual but non-fatal situations, such as a failed
	// factory create.
	LevelWarn
	// LevelError covers programmer errors (double/foreign release or
	// destroy).
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// LogFunc is the log collaborator contract: a sink for operator
// diagnostics. Its wording is not a protocol callers should parse.
type LogFunc func(level LogLevel, msg string, fields ...zap.Field)

// Config is the configuration accepted by New. Construct one with
// NewConfig to get the documented defaults, then override fields as
// needed.
type Config struct {
	// Name is a diagnostic label only; it has no effect on behaviour.
	Name string

	// Factory supplies Create, Destroy, and exactly one of
	// Validate/ValidateAsync.
	Factory Factory

	// Min is the floor the pool eagerly maintains once ensureMinimum has
	// run for the first time (see New's doc comment on pre-warming).
	Min int
	// Max is the hard ceiling on Size(). Min <= Max.
	Max int

	// IdleTimeout is how long an available resource may sit idle before
	// it becomes eligible for reaping. Default 30s.
	IdleTimeout time.Duration
	// ReapInterval is the period between reaper sweeps while armed.
	// Default 1s.
	ReapInterval time.Duration
	// AcquireTimeout bounds how long a waiter may remain enqueued. Zero
	// means no deadline.
	AcquireTimeout time.Duration

	// RefreshIdle controls whether a resource's idle clock restarts each
	// time it is released back to the pool (true, the default) or keeps
	// counting from the first time it went idle, so a handle that keeps
	// getting checked out and back in briefly still ages out on schedule
	// (false).
	RefreshIdle bool
	// ReturnToHead, when true, inserts released resources at the head of
	// the available list (LIFO reuse) rather than the tail (FIFO reuse).
	ReturnToHead bool

	// Log enables the default zap-backed log sink. LogFunc, if set,
	// overrides it entirely.
	Log     bool
	LogFunc LogFunc
}

// NewConfig returns a Config with the documented defaults applied:
// callers get a valid starting point and mutate only the fields they
// care about.
func NewConfig(name string, factory Factory) Config {
	return Config{
		Name:         name,
		Factory:      factory,
		IdleTimeout:  30 * time.Second,
		ReapInterval: 1 * time.Second,
		RefreshIdle:  true,
	}
}

// Validate checks the cross-field constraints on Config, returning a
// poolerrors KindConfig error describing the first violation found.
func (c Config) Validate() error {
	if err := c.Factory.validate(); err != nil {
		return err
	}
	if c.Min < 0 {
		return newConfigErr("min must be >= 0")
	}
	if c.Max <= 0 {
		return newConfigErr("max must be > 0")
	}
	if c.Min > c.Max {
		return newConfigErr("min must be <= max")
	}
	if c.IdleTimeout <= 0 {
		return newConfigErr("idle_timeout_millis must be > 0")
	}
	if c.ReapInterval <= 0 {
		return newConfigErr("reap_interval_millis must be > 0")
	}
	if c.AcquireTimeout < 0 {
		return newConfigErr("acquire_timeout_millis must be >= 0")
	}
	return nil
}

func newConfigErr(msg string) error {
	return poolerrors.NewConfigError(msg)
}
