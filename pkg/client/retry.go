package client

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// retryWithBackoff runs fn up to maxRetries+1 times with exponential backoff.
// Only server, network and timeout failures are retried; client errors,
// malformed bodies and cancellations return immediately.
func retryWithBackoff(ctx context.Context, maxRetries int, initialBackoff time.Duration, fn func() error) error {
	attempts := uint(maxRetries) + 1
	if maxRetries < 0 {
		attempts = 1
	}

	var lastClass ErrorClass
	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(initialBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			ue, ok := IsUpstream(err)
			if !ok {
				return false
			}
			lastClass = ue.Class
			return shouldRetry(ue.Class)
		}),
		retry.OnRetry(func(n uint, err error) {
			if n+1 >= attempts {
				return
			}
			retriesTotal.WithLabelValues(string(lastClass)).Inc()
			log.Debug().
				Err(err).
				Str("error_class", string(lastClass)).
				Uint("attempt", n+1).
				Msg("Retrying catalog request after backoff")
		}),
	)

	if err != nil && attempts > 1 && shouldRetry(lastClass) {
		if _, ok := IsUpstream(err); ok {
			retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
			log.Warn().
				Str("error_class", string(lastClass)).
				Uint("max_attempts", attempts).
				Msg("Retry attempts exhausted")
		}
	}

	return err
}
