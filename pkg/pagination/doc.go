// Package pagination provides the detail fan-out worker pool and local page
// slicing used by the query resolver.
//
// Filtering by type needs the detail record of every candidate. BatchFetcher
// distributes those per-id fetches across a bounded worker pool and collects
// the successes; failed items are dropped and counted.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(detailFetcher, pagination.DefaultConfig(), logger)
//	details, err := fetcher.FetchAll(ctx, []int{4, 5, 6})
//
//	items, total, hasMore := pagination.Paginate(filtered, page, 20)
//
// The batch fetcher:
//   - Spawns at most MaxConcurrency workers (default 16)
//   - Waits until every id has settled
//   - Drops failures silently (catalog_fanout_dropped_total)
//   - Stops early and returns ctx.Err() when the context ends
package pagination
