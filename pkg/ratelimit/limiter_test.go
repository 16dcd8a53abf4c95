package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 10, zerolog.Nop())
	assert.Nil(t, l)

	// nil limiter never blocks
	assert.NoError(t, l.Wait(context.Background()))
	assert.Equal(t, 0.0, l.Limit())
}

func TestLimiter_BurstPassesImmediately(t *testing.T) {
	l := NewLimiter(1, 5, zerolog.Nop())
	require.NotNil(t, l)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_ThrottlesAfterBurst(t *testing.T) {
	l := NewLimiter(20, 1, zerolog.Nop())
	require.NotNil(t, l)

	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestLimiter_WaitHonorsCancellation(t *testing.T) {
	l := NewLimiter(0.1, 1, zerolog.Nop())
	require.NotNil(t, l)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
