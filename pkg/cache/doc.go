// Package cache memoizes entity details by id.
//
// Two Store implementations are provided:
//
//   - Memory: process-lifetime map, the default
//   - Redis: shared across processes, keys "catalog:detail:{id}"
//
// Both are write-once. A detail stored for an id is never replaced, and
// entries never expire. Concurrent lookups for the same uncached id are not
// deduplicated; both callers fetch and the first Set wins.
//
// # Basic Usage
//
//	store := cache.NewMemory()
//
//	detail, err := store.Get(ctx, 25)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		detail, err = client.GetDetail(ctx, "25")
//		if err == nil {
//			_ = store.Set(ctx, detail.ID, detail)
//		}
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total{layer} - Cache hits
//   - catalog_cache_misses_total - Cache misses
//   - catalog_cache_entries{layer} - Entries written by this process
//   - catalog_cache_errors_total{operation} - Cache operation errors
package cache
