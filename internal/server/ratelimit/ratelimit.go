// Package ratelimit throttles abuse-prone endpoints per client key. A Redis
// fixed window is used when Redis is configured so limits hold across
// instances; otherwise each process keeps in-memory token buckets.
package ratelimit

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/server/config"
)

// Limiter decides whether one more request for key may proceed. When it may
// not, retryAfter says how long the client should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, time.Duration, error) { return true, 0, nil }

// New picks the limiter for cfg. A nil counter selects the in-memory limiter.
func New(cfg *config.Config, counter Counter) Limiter {
	if cfg.LoginRateLimit <= 0 {
		return Unlimited{}
	}
	window := cfg.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	if counter != nil {
		return NewRedisLimiter(counter, "vidtube:login:", cfg.LoginRateLimit, window)
	}
	return NewMemoryLimiter(cfg.LoginRateLimit, window)
}
