package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between successive calls. The first
// call passes immediately; later calls block until the interval has
// elapsed since the previous one.
type Pacer struct {
	limiter *rate.Limiter
}

func New(minInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		minInterval = time.Nanosecond
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Pace blocks until the next call is allowed or the context is done.
func (p *Pacer) Pace(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Nop is a pacer that never waits, for tests.
type Nop struct{}

func (Nop) Pace(ctx context.Context) error { return ctx.Err() }
