package duallang

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimitConfig sets the budgets enforced by a RateLimiter. A zero value
// disables that budget.
type RateLimitConfig struct {
	RequestsPerMinute int // gateway calls
	TextsPerMinute    int // spans across all batches
}

// budget is a token bucket holding one minute of allowance.
type budget struct {
	capacity float64
	tokens   float64
	perSec   float64
	last     time.Time
}

func newBudget(perMinute int, now time.Time) *budget {
	if perMinute <= 0 {
		return nil
	}
	c := float64(perMinute)
	return &budget{capacity: c, tokens: c, perSec: c / 60, last: now}
}

// reserve takes n tokens, going into debt when the bucket runs dry, and
// returns how long until the debt is repaid. A charge larger than the whole
// allowance is capped at the allowance.
func (b *budget) reserve(n float64, now time.Time) time.Duration {
	if b == nil {
		return 0
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.perSec)
		b.last = now
	}
	b.tokens -= math.Min(n, b.capacity)
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.perSec * float64(time.Second))
}

func (b *budget) refund(n float64) {
	if b == nil {
		return
	}
	b.tokens = math.Min(b.capacity, b.tokens+math.Min(n, b.capacity))
}

// RateLimiter paces gateway calls against a per-minute call budget and a
// per-minute span budget. Callers queue in reservation order.
type RateLimiter struct {
	mu       sync.Mutex
	requests *budget
	texts    *budget
	now      func() time.Time
}

// NewRateLimiter creates a limiter with full budgets.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		requests: newBudget(cfg.RequestsPerMinute, now),
		texts:    newBudget(cfg.TextsPerMinute, now),
		now:      time.Now,
	}
}

// Reserve charges one call carrying n spans and returns how long the caller
// must wait before sending it.
func (r *RateLimiter) Reserve(n int) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	return max(r.requests.reserve(1, now), r.texts.reserve(float64(n), now))
}

func (r *RateLimiter) cancel(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests.refund(1)
	r.texts.refund(float64(n))
}

// Wait blocks until a call carrying n spans may be sent. A cancelled wait
// gives its reservation back.
func (r *RateLimiter) Wait(ctx context.Context, n int) error {
	d := r.Reserve(n)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		r.cancel(n)
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RateLimitedGateway paces a Gateway by calls and by batch size. One
// instance is shared by every document of a run.
type RateLimitedGateway struct {
	gateway Gateway
	limiter *RateLimiter
}

// NewRateLimitedGateway creates a new rate-limited gateway.
func NewRateLimitedGateway(gateway Gateway, cfg RateLimitConfig) *RateLimitedGateway {
	return &RateLimitedGateway{
		gateway: gateway,
		limiter: NewRateLimiter(cfg),
	}
}

// Transform implements Gateway.
func (g *RateLimitedGateway) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}
	if err := g.limiter.Wait(ctx, len(req.Texts)); err != nil {
		return nil, &ProviderError{Message: "rate limit wait cancelled", Cause: err}
	}
	return g.gateway.Transform(ctx, req)
}

// Limiter returns the underlying limiter.
func (g *RateLimitedGateway) Limiter() *RateLimiter {
	return g.limiter
}
