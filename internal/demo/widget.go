// Package demo provides a synthetic Factory for exercising a
// respool.Pool without any real external dependency, and a second
// factory that behaves like a flaky network resource for testing the
// pool's error paths.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajitpratap0/respool/pkg/respool"
)

// Widget is a fake expensive resource: something that takes real time to
// construct and can go bad while idle.
type Widget struct {
	ID        uuid.UUID
	CreatedAt time.Time
	uses      int
}

// Uses returns how many times Validate has been called on this widget,
// which the pool does each time it hands out an idle widget again; the
// first checkout, straight from Create, is not counted.
func (w *Widget) Uses() int { return w.uses }

func (w *Widget) String() string {
	return fmt.Sprintf("widget-%s", w.ID.String()[:8])
}

// WidgetFactory builds an in-memory Factory that simulates a
// creation cost and rejects widgets past a configurable lifetime,
// synchronously, the way a cheap in-process resource would.
func WidgetFactory(createLatency time.Duration, maxLifetime time.Duration) respool.Factory {
	return respool.Factory{
		Create: func(ctx context.Context) (any, error) {
			select {
			case <-time.After(createLatency):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &Widget{ID: uuid.New(), CreatedAt: time.Now()}, nil
		},
		Destroy: func(handle any) {
			// Nothing to release for an in-memory widget.
		},
		Validate: func(handle any) bool {
			w, ok := handle.(*Widget)
			if !ok {
				return false
			}
			w.uses++
			return time.Since(w.CreatedAt) < maxLifetime
		},
	}
}

// FlakyWidgetFactory builds a Factory whose Create fails a fraction of
// the time and whose validation runs asynchronously on its own
// goroutine, exercising the pool's async-validate and factory-error
// paths the way a real network dial would.
func FlakyWidgetFactory(createLatency time.Duration, failureRate float64, rng *rand.Rand) respool.Factory {
	var mu sync.Mutex
	roll := func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}

	return respool.Factory{
		Create: func(ctx context.Context) (any, error) {
			select {
			case <-time.After(createLatency):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if roll() < failureRate {
				return nil, fmt.Errorf("simulated dial failure")
			}
			return &Widget{ID: uuid.New(), CreatedAt: time.Now()}, nil
		},
		Destroy: func(handle any) {},
		ValidateAsync: func(handle any, done func(valid bool)) {
			go func() {
				time.Sleep(time.Millisecond)
				_, ok := handle.(*Widget)
				done(ok && roll() >= failureRate)
			}()
		},
	}
}
