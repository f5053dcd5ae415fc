package scraper

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces requests out: a random delay in [min, max] before every
// request, then an optional rate limit on top.
type pacer struct {
	min, max time.Duration
	limiter  *rate.Limiter
	rnd      *rand.Rand
}

func newPacer(min, max time.Duration, rps float64, rnd *rand.Rand) *pacer {
	p := &pacer{min: min, max: max, rnd: rnd}
	if rps > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return p
}

// delay picks the next wait, uniformly distributed in [min, max].
func (p *pacer) delay() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	span := int64(p.max-p.min) + 1
	if p.rnd != nil {
		return p.min + time.Duration(p.rnd.Int64N(span))
	}
	return p.min + time.Duration(rand.Int64N(span))
}

// Wait blocks until the next request may be sent or ctx is done.
func (p *pacer) Wait(ctx context.Context) error {
	if d := p.delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}
	return ctx.Err()
}
