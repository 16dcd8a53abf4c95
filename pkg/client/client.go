// Package client provides the remote catalog HTTP client with per-call
// timeouts, typed upstream errors, cooperative cancellation, optional retry
// and client-side rate limiting.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total upstream catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Upstream catalog request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total upstream catalog errors by class",
	}, []string{"class"})
)

// Endpoint labels used for metrics and logs.
const (
	endpointList   = "list"
	endpointDetail = "detail"
	endpointTypes  = "types"
)

// DefaultBaseURL is the public catalog service.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// DefaultTimeout bounds every individual network call.
const DefaultTimeout = 10 * time.Second

// Client talks to the upstream list and detail endpoints.
// It does not cache; see pkg/cache for detail memoization.
type Client struct {
	http    *resty.Client
	limiter *ratelimit.Limiter
	config  Config
	logger  zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the catalog API, e.g. "https://pokeapi.co/api/v2"
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout per individual network call
	Timeout time.Duration

	// Retry (0 = single attempt)
	MaxRetries     int
	InitialBackoff time.Duration

	// Rate limiting (requests per second, <= 0 disables)
	RateLimit float64
	Burst     int

	// HTTPClient overrides the underlying transport (optional)
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      "catalog-explorer/0.1.0",
		Timeout:        DefaultTimeout,
		MaxRetries:     0,
		InitialBackoff: 500 * time.Millisecond,
		RateLimit:      100,
		Burst:          100,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: logger})
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:    rc,
		limiter: ratelimit.NewLimiter(cfg.RateLimit, cfg.Burst, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// ListPage fetches one page of the entity list.
func (c *Client) ListPage(ctx context.Context, limit, offset int) (*catalog.ListPage, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit=%d offset=%d", ErrInvalidArgument, limit, offset)
	}

	query := map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}

	var lr listResponse
	if err := c.get(ctx, endpointList, "/pokemon", query, &lr); err != nil {
		return nil, err
	}

	page, err := lr.toListPage()
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return nil, &UpstreamError{
			StatusCode: http.StatusOK,
			Class:      ErrorClassMalformed,
			Message:    "malformed list entry",
			Err:        err,
		}
	}
	return page, nil
}

// GetDetail fetches the detail record for an id or name.
// A 404 is returned as an UpstreamError; see LookupByName for the
// not-found-is-normal variant.
func (c *Client) GetDetail(ctx context.Context, idOrName string) (*catalog.EntityDetail, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("%w: empty id or name", ErrInvalidArgument)
	}

	var dr detailResponse
	if err := c.get(ctx, endpointDetail, "/pokemon/"+url.PathEscape(idOrName), nil, &dr); err != nil {
		return nil, err
	}
	return dr.toDetail(), nil
}

// LookupByName resolves an exact, case-insensitive name.
// Not found (404 or 400) returns (nil, nil); every other failure propagates.
func (c *Client) LookupByName(ctx context.Context, name string) (*catalog.EntityDetail, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}

	detail, err := c.GetDetail(ctx, name)
	if err != nil {
		if ue, ok := IsUpstream(err); ok &&
			(ue.StatusCode == http.StatusNotFound || ue.StatusCode == http.StatusBadRequest) {
			c.logger.Debug().Str("name", name).Int("status", ue.StatusCode).Msg("No exact name match")
			return nil, nil
		}
		return nil, err
	}
	return detail, nil
}

// ListTypes returns the names of all entity types.
func (c *Client) ListTypes(ctx context.Context) ([]string, error) {
	var tr typeListResponse
	if err := c.get(ctx, endpointTypes, "/type", map[string]string{"limit": "100"}, &tr); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tr.Results))
	for _, t := range tr.Results {
		names = append(names, t.Name)
	}
	return names, nil
}

// EntityURL returns the canonical detail URL for an id.
func (c *Client) EntityURL(id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", strings.TrimRight(c.config.BaseURL, "/"), id)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

// get performs a GET with retry and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string, out interface{}) error {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	err := retryWithBackoff(ctx, c.config.MaxRetries, c.config.InitialBackoff, func() error {
		return c.attempt(ctx, endpoint, path, query, out)
	})
	if err == nil {
		return nil
	}

	// A cancelled caller always wins over whatever the last attempt saw.
	if ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
		return c.cancelled(endpoint, ctx.Err())
	}
	return err
}

// attempt executes a single request under its own timeout.
func (c *Client) attempt(ctx context.Context, endpoint, path string, query map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.cancelled(endpoint, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("path", path).
		Msg("Executing catalog request")

	req := c.http.R().SetContext(callCtx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return c.cancelled(endpoint, ctx.Err())
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			errorsTotal.WithLabelValues(string(ErrorClassTimeout)).Inc()
			requestsTotal.WithLabelValues(endpoint, "timeout").Inc()
			c.logger.Warn().Str("endpoint", endpoint).Dur("timeout", c.config.Timeout).Msg("Catalog request timed out")
			return &UpstreamError{
				Class:   ErrorClassTimeout,
				Message: "Request timeout",
				Err:     ErrTimeout,
			}
		}
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Catalog request failed")
		return &UpstreamError{
			Class:   ErrorClassNetwork,
			Message: "network error",
			Err:     err,
		}
	}

	statusCode := resp.StatusCode()
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()

	if statusCode < 200 || statusCode >= 300 {
		errClass := classifyStatus(statusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		event := c.logger.Warn()
		if statusCode == http.StatusNotFound {
			event = c.logger.Debug()
		}
		event.Str("endpoint", endpoint).
			Str("path", path).
			Int("status", statusCode).
			Str("error_class", string(errClass)).
			Msg("Catalog request error")

		return &UpstreamError{
			StatusCode: statusCode,
			Class:      errClass,
			Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return &UpstreamError{
			StatusCode: statusCode,
			Class:      ErrorClassMalformed,
			Message:    "malformed response body",
			Err:        err,
		}
	}

	return nil
}

func (c *Client) cancelled(endpoint string, cause error) error {
	requestsTotal.WithLabelValues(endpoint, "cancelled").Inc()
	c.logger.Debug().Str("endpoint", endpoint).Msg("Catalog request cancelled")
	return fmt.Errorf("%w: %s: %v", ErrCancelled, endpoint, cause)
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
