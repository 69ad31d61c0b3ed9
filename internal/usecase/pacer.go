package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces successive outbound calls. A call may start once delay has
// elapsed since the previous call was admitted and, when the caller reports
// completion through Done, since the previous call finished.
type Pacer struct {
	mu      sync.Mutex
	delay   time.Duration
	limiter *rate.Limiter
}

// NewPacer builds a pacer admitting one call per delay. Zero disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	p := &Pacer{delay: delay}
	if delay > 0 {
		p.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return p
}

// Wait blocks until the next call may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}

	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()

	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// Done marks the end of a paced call. The next Wait is held for a full
// delay from now, however long the call itself took.
func (p *Pacer) Done() {
	if p == nil || p.delay <= 0 {
		return
	}

	// A fresh bucket starts full; draining it leaves the next token one delay away.
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	limiter.Allow()

	p.mu.Lock()
	p.limiter = limiter
	p.mu.Unlock()
}
