package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetcherFunc(fn func(ctx context.Context, id int) (*catalog.EntityDetail, error)) DetailFetcher {
	return DetailFetcherFunc(fn)
}

func TestBatchFetcher_FetchAll(t *testing.T) {
	fetcher := fetcherFunc(func(_ context.Context, id int) (*catalog.EntityDetail, error) {
		return &catalog.EntityDetail{ID: id, Name: fmt.Sprintf("e%d", id)}, nil
	})
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 4}, zerolog.Nop())

	ids := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	results, err := bf.FetchAll(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, results, len(ids))
	for _, id := range ids {
		require.Contains(t, results, id)
		assert.Equal(t, fmt.Sprintf("e%d", id), results[id].Name)
	}
}

func TestBatchFetcher_DropsFailures(t *testing.T) {
	fetcher := fetcherFunc(func(_ context.Context, id int) (*catalog.EntityDetail, error) {
		if id%3 == 0 {
			return nil, errors.New("upstream 500")
		}
		return &catalog.EntityDetail{ID: id}, nil
	})
	bf := NewBatchFetcher(fetcher, DefaultConfig(), zerolog.Nop())

	results, err := bf.FetchAll(context.Background(), []int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err, "per-item failures never fail the batch")

	assert.Len(t, results, 4)
	assert.NotContains(t, results, 3)
	assert.NotContains(t, results, 6)
}

func TestBatchFetcher_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	fetcher := fetcherFunc(func(_ context.Context, id int) (*catalog.EntityDetail, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &catalog.EntityDetail{ID: id}, nil
	})
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 3}, zerolog.Nop())

	ids := make([]int, 30)
	for i := range ids {
		ids[i] = i + 1
	}
	results, err := bf.FetchAll(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, results, 30)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestBatchFetcher_Empty(t *testing.T) {
	called := false
	bf := NewBatchFetcher(fetcherFunc(func(context.Context, int) (*catalog.EntityDetail, error) {
		called = true
		return nil, nil
	}), DefaultConfig(), zerolog.Nop())

	results, err := bf.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestBatchFetcher_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	fetcher := fetcherFunc(func(ctx context.Context, id int) (*catalog.EntityDetail, error) {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	bf := NewBatchFetcher(fetcher, Config{MaxConcurrency: 2}, zerolog.Nop())

	ids := make([]int, 100)
	for i := range ids {
		ids[i] = i + 1
	}

	_, err := bf.FetchAll(ctx, ids)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, atomic.LoadInt32(&calls), int32(100), "workers stop picking up ids after cancellation")
}

func TestNewBatchFetcher_DefaultsConcurrency(t *testing.T) {
	bf := NewBatchFetcher(nil, Config{}, zerolog.Nop())
	assert.Equal(t, 16, bf.config.MaxConcurrency)
}
