// Package resolver turns a QueryDescriptor into a ResultPage.
//
// Unfiltered queries map one upstream list page onto one result page.
// Filtered queries load a fixed candidate batch and filter, sort and paginate
// it locally, fetching details concurrently when a type filter is active.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/cache"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
	"github.com/Sternrassler/catalog-explorer/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const (
	// PageSize is the number of items in every result page.
	PageSize = 20

	// BatchSize is the size of the candidate universe for filtered queries.
	// Entries beyond the first BatchSize are never considered.
	BatchSize = 1000
)

// Branch and outcome labels.
const (
	branchList     = "list"
	branchFiltered = "filtered"

	outcomeOK        = "ok"
	outcomeExact     = "exact_match"
	outcomeError     = "error"
	outcomeCancelled = "cancelled"
	outcomeInvalid   = "invalid"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_resolutions_total",
		Help: "Total query resolutions by branch and outcome",
	}, []string{"branch", "outcome"})

	resolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_resolution_duration_seconds",
		Help:    "Query resolution duration in seconds by branch",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"branch"})
)

// Upstream is the subset of the catalog client the resolver needs.
type Upstream interface {
	ListPage(ctx context.Context, limit, offset int) (*catalog.ListPage, error)
	GetDetail(ctx context.Context, idOrName string) (*catalog.EntityDetail, error)
	LookupByName(ctx context.Context, name string) (*catalog.EntityDetail, error)
	EntityURL(id int) string
}

// Config holds resolver configuration.
type Config struct {
	// MaxConcurrency bounds parallel detail fetches during type filtering.
	MaxConcurrency int
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{MaxConcurrency: pagination.DefaultConfig().MaxConcurrency}
}

// Resolver resolves query descriptors against the upstream catalog.
// It is safe for concurrent use.
type Resolver struct {
	upstream Upstream
	cache    cache.Store
	fanout   *pagination.BatchFetcher
	logger   zerolog.Logger
}

// New creates a resolver. A nil store falls back to an in-memory cache.
func New(upstream Upstream, store cache.Store, cfg Config, logger zerolog.Logger) *Resolver {
	if store == nil {
		store = cache.NewMemory()
	}

	r := &Resolver{
		upstream: upstream,
		cache:    store,
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
	r.fanout = pagination.NewBatchFetcher(
		pagination.DetailFetcherFunc(r.fetchDetail),
		pagination.Config{MaxConcurrency: cfg.MaxConcurrency},
		logger,
	)
	return r
}

// Resolve produces the result page for a descriptor.
//
// Cancellation of ctx yields an error matching client.ErrCancelled and never
// a partial page. Upstream failures of the page-level requests propagate;
// failures of individual detail fetches only drop that item.
func (r *Resolver) Resolve(ctx context.Context, d catalog.QueryDescriptor) (catalog.ResultPage, error) {
	d = d.Normalize()

	branch := branchList
	if d.Filtered() {
		branch = branchFiltered
	}

	if err := d.Validate(); err != nil {
		resolutionsTotal.WithLabelValues(branch, outcomeInvalid).Inc()
		return catalog.ResultPage{}, err
	}

	start := time.Now()
	var (
		page    catalog.ResultPage
		outcome string
		err     error
	)
	if branch == branchList {
		page, err = r.resolveList(ctx, d)
		outcome = outcomeOK
	} else {
		page, outcome, err = r.resolveFiltered(ctx, d)
	}
	resolutionDuration.WithLabelValues(branch).Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil || client.IsCancelled(err) {
			resolutionsTotal.WithLabelValues(branch, outcomeCancelled).Inc()
			r.logger.Debug().Str("branch", branch).Stringer("descriptor", d).Msg("Resolution cancelled")
			return catalog.ResultPage{}, cancelled(ctx, err)
		}
		resolutionsTotal.WithLabelValues(branch, outcomeError).Inc()
		return catalog.ResultPage{}, err
	}

	resolutionsTotal.WithLabelValues(branch, outcome).Inc()
	r.logger.Debug().
		Str("branch", branch).
		Stringer("descriptor", d).
		Int("items", len(page.Items)).
		Int("total", page.Total).
		Dur("duration", time.Since(start)).
		Msg("Resolution complete")

	return page, nil
}

// resolveList maps one upstream page onto one result page. Sorting by name
// only reorders the current page.
func (r *Resolver) resolveList(ctx context.Context, d catalog.QueryDescriptor) (catalog.ResultPage, error) {
	lp, err := r.upstream.ListPage(ctx, PageSize, pagination.Offset(d.Page, PageSize))
	if err != nil {
		return catalog.ResultPage{}, fmt.Errorf("list page %d: %w", d.Page, err)
	}

	items := make([]catalog.EntitySummary, len(lp.Results))
	copy(items, lp.Results)
	if d.Sort == catalog.SortByNameKey {
		catalog.SortByName(items)
	}

	return catalog.ResultPage{
		Items:   items,
		Total:   lp.Count,
		HasMore: lp.HasNext,
	}, nil
}

// resolveFiltered filters the candidate batch by name and type, then sorts
// and paginates the whole filtered set.
func (r *Resolver) resolveFiltered(ctx context.Context, d catalog.QueryDescriptor) (catalog.ResultPage, string, error) {
	batch, err := r.upstream.ListPage(ctx, BatchSize, 0)
	if err != nil {
		return catalog.ResultPage{}, "", fmt.Errorf("candidate batch: %w", err)
	}
	candidates := batch.Results

	if d.Text != "" {
		hit, err := r.upstream.LookupByName(ctx, d.Text)
		if err != nil {
			return catalog.ResultPage{}, "", fmt.Errorf("exact lookup %q: %w", d.Text, err)
		}
		if hit != nil {
			r.remember(ctx, hit.ID, hit)
		}
		// With a type filter the exact match falls through to the substring
		// filter like a miss.
		if hit != nil && d.Type == "" {
			return catalog.ResultPage{
				Items:   []catalog.EntitySummary{hit.Summary(r.upstream.EntityURL(hit.ID))},
				Total:   1,
				HasMore: false,
			}, outcomeExact, nil
		}
		candidates = filterByName(candidates, d.Text)
	}

	if d.Type != "" {
		candidates, err = r.filterByType(ctx, candidates, d.Type)
		if err != nil {
			return catalog.ResultPage{}, "", err
		}
	}

	if d.Sort == catalog.SortByNameKey {
		sorted := make([]catalog.EntitySummary, len(candidates))
		copy(sorted, candidates)
		catalog.SortByName(sorted)
		candidates = sorted
	}

	items, total, hasMore := pagination.Paginate(candidates, d.Page, PageSize)
	return catalog.ResultPage{Items: items, Total: total, HasMore: hasMore}, outcomeOK, nil
}

// filterByType keeps candidates whose detail lists typeName.
// Items whose detail could not be fetched are dropped.
func (r *Resolver) filterByType(ctx context.Context, candidates []catalog.EntitySummary, typeName string) ([]catalog.EntitySummary, error) {
	ids := make([]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	details, err := r.fanout.FetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := make([]catalog.EntitySummary, 0, len(candidates))
	for _, c := range candidates {
		if detail, ok := details[c.ID]; ok && detail.HasType(typeName) {
			kept = append(kept, c)
		}
	}

	r.logger.Debug().
		Str("type", typeName).
		Int("candidates", len(candidates)).
		Int("dropped", len(candidates)-len(details)).
		Int("matched", len(kept)).
		Msg("Type filter applied")

	return kept, nil
}

// Detail returns the detail record for a numeric id or a name.
// Numeric ids are served from the cache when possible; every fetched detail
// is stored under its id.
func (r *Resolver) Detail(ctx context.Context, idOrName string) (*catalog.EntityDetail, error) {
	idOrName = strings.ToLower(strings.TrimSpace(idOrName))
	if idOrName == "" {
		return nil, fmt.Errorf("%w: empty id or name", client.ErrInvalidArgument)
	}

	if id, err := strconv.Atoi(idOrName); err == nil {
		detail, err := r.fetchDetail(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("detail %d: %w", id, err)
		}
		return detail, nil
	}

	detail, err := r.upstream.GetDetail(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("detail %q: %w", idOrName, err)
	}
	r.remember(ctx, detail.ID, detail)
	return detail, nil
}

// Summaries resolves ids into summaries in input order. Ids whose detail
// cannot be fetched are left out.
func (r *Resolver) Summaries(ctx context.Context, ids []int) ([]catalog.EntitySummary, error) {
	unique := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	details, err := r.fanout.FetchAll(ctx, unique)
	if err != nil {
		return nil, cancelled(ctx, err)
	}

	out := make([]catalog.EntitySummary, 0, len(details))
	for _, id := range unique {
		if detail, ok := details[id]; ok {
			out = append(out, detail.Summary(r.upstream.EntityURL(id)))
		}
	}
	return out, nil
}

// fetchDetail reads through the cache. Cache failures are treated as misses.
func (r *Resolver) fetchDetail(ctx context.Context, id int) (*catalog.EntityDetail, error) {
	cached, err := r.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn().Err(err).Int("id", id).Msg("Detail cache read failed, fetching upstream")
	}

	detail, err := r.upstream.GetDetail(ctx, strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	r.remember(ctx, id, detail)
	return detail, nil
}

func (r *Resolver) remember(ctx context.Context, id int, detail *catalog.EntityDetail) {
	if err := r.cache.Set(ctx, id, detail); err != nil {
		r.logger.Warn().Err(err).Int("id", id).Msg("Detail cache write failed")
	}
}

// filterByName keeps candidates whose name contains text, ignoring case.
func filterByName(candidates []catalog.EntitySummary, text string) []catalog.EntitySummary {
	needle := strings.ToLower(text)
	kept := make([]catalog.EntitySummary, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			kept = append(kept, c)
		}
	}
	return kept
}

// cancelled normalizes any error observed after cancellation to ErrCancelled.
func cancelled(ctx context.Context, err error) error {
	if client.IsCancelled(err) {
		return err
	}
	cause := ctx.Err()
	if cause == nil {
		cause = err
	}
	return fmt.Errorf("%w: %v", client.ErrCancelled, cause)
}
