// Package ratelimit implements client-side request pacing for the upstream
// catalog. Type-filtered queries fan out into hundreds of detail requests;
// the limiter keeps that burst within a configured requests-per-second budget.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request pacing.
var (
	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_waits_total",
		Help: "Total number of upstream requests that had to wait for a token",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_rate_limit_wait_seconds",
		Help:    "Time spent waiting for a rate limit token",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Limiter gates upstream requests with a token bucket.
// A nil *Limiter or one built with a non-positive rate never blocks.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewLimiter creates a limiter allowing perSecond requests with the given burst.
// Returns nil when perSecond <= 0 (unlimited).
func NewLimiter(perSecond float64, burst int, logger zerolog.Logger) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	reservation := l.limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	rateLimitWaitsTotal.Inc()
	l.logger.Debug().Dur("delay", delay).Msg("Throttling upstream request")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		reservation.Cancel()
		return fmt.Errorf("rate limit wait: %w", ctx.Err())
	case <-timer.C:
		rateLimitWaitSeconds.Observe(delay.Seconds())
		return nil
	}
}

// Limit returns the configured requests per second, or 0 when unlimited.
func (l *Limiter) Limit() float64 {
	if l == nil {
		return 0
	}
	return float64(l.limiter.Limit())
}
