package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/rs/zerolog"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel detail requests
	MaxConcurrency int
}

// DefaultConfig returns the default fan-out configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 16,
	}
}

// DetailFetcher fetches the detail record for one entity id.
// The resolver supplies an implementation that consults the detail cache
// before going to the network.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, id int) (*catalog.EntityDetail, error)
}

// DetailFetcherFunc adapts a function to DetailFetcher.
type DetailFetcherFunc func(ctx context.Context, id int) (*catalog.EntityDetail, error)

// FetchDetail calls f(ctx, id).
func (f DetailFetcherFunc) FetchDetail(ctx context.Context, id int) (*catalog.EntityDetail, error) {
	return f(ctx, id)
}

// DetailResult represents the outcome of fetching a single detail
type DetailResult struct {
	ID     int
	Detail *catalog.EntityDetail
	Error  error
}

// BatchFetcher fetches many details in parallel with a bounded worker pool
type BatchFetcher struct {
	fetcher DetailFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher DetailFetcher, config Config, logger zerolog.Logger) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  logger.With().Str("component", "fanout").Logger(),
	}
}

// FetchAll fetches details for all ids and returns id -> detail for the ones
// that succeeded. Individual failures are logged and dropped; they never fail
// the batch. The call returns once every id has settled.
//
// If ctx ends first, FetchAll returns ctx.Err() along with whatever completed.
func (bf *BatchFetcher) FetchAll(ctx context.Context, ids []int) (map[int]*catalog.EntityDetail, error) {
	start := time.Now()
	results := make(map[int]*catalog.EntityDetail, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	workers := min(bf.config.MaxConcurrency, len(ids))

	// Both channels hold the whole batch so neither side ever blocks.
	idQueue := make(chan int, len(ids))
	detailResults := make(chan DetailResult, len(ids))
	for _, id := range ids {
		idQueue <- id
	}
	close(idQueue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, idQueue, detailResults, &wg, i)
	}

	// Close results channel when all workers done
	go func() {
		wg.Wait()
		close(detailResults)
	}()

	dropped := 0
	for result := range detailResults {
		if result.Error != nil {
			if ctx.Err() != nil {
				continue
			}
			dropped++
			FanoutDropped.Inc()
			bf.logger.Debug().
				Err(result.Error).
				Int("id", result.ID).
				Msg("Detail fetch failed, dropping item")
			continue
		}
		results[result.ID] = result.Detail
	}

	FanoutDuration.Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		bf.logger.Debug().
			Int("fetched", len(results)).
			Int("total", len(ids)).
			Msg("Fan-out stopped (context cancelled)")
		return results, err
	}

	bf.logger.Debug().
		Int("fetched", len(results)).
		Int("dropped", dropped).
		Int("total", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("Fan-out complete")

	return results, nil
}

// worker processes ids from the queue until it is empty or ctx ends
func (bf *BatchFetcher) worker(ctx context.Context, idQueue <-chan int, results chan<- DetailResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for id := range idQueue {
		if ctx.Err() != nil {
			bf.logger.Debug().
				Int("worker_id", workerID).
				Int("processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		}

		detail, err := bf.fetcher.FetchDetail(ctx, id)
		results <- DetailResult{ID: id, Detail: detail, Error: err}
		processed++
	}
}
