package resolver

import (
	"context"
	"sync"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Querier resolves a descriptor. *Resolver implements it.
type Querier interface {
	Resolve(ctx context.Context, d catalog.QueryDescriptor) (catalog.ResultPage, error)
}

// State is what a Session publishes to its listener.
type State struct {
	ResolutionID string
	Descriptor   catalog.QueryDescriptor
	Loading      bool
	Page         catalog.ResultPage
	Err          error
	// Retryable is set for upstream failures; the caller may offer Retry.
	Retryable bool
}

// Session keeps at most one resolution current. Submitting a new descriptor
// cancels the previous resolution, and a superseded resolution never
// publishes its result.
type Session struct {
	resolver Querier
	listener func(State)
	logger   zerolog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	last       catalog.QueryDescriptor
	hasLast    bool
	closed     bool
}

// NewSession creates a session publishing to listener.
// The listener runs with the session lock held: calls are serialized and it
// must not call back into the Session.
func NewSession(resolver Querier, listener func(State), logger zerolog.Logger) *Session {
	if listener == nil {
		listener = func(State) {}
	}
	return &Session{
		resolver: resolver,
		listener: listener,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Submit starts resolving d and supersedes any in-flight resolution.
// The returned channel is closed once the resolution has settled, whether
// its result was published or discarded.
func (s *Session) Submit(ctx context.Context, d catalog.QueryDescriptor) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(done)
		return done
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	resolveCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.last = d
	s.hasLast = true

	resolutionID := uuid.NewString()
	s.listener(State{ResolutionID: resolutionID, Descriptor: d, Loading: true})
	s.mu.Unlock()

	logger := s.logger.With().Str("resolution_id", resolutionID).Uint64("generation", gen).Logger()
	logger.Debug().Stringer("descriptor", d).Msg("Resolution started")

	go func() {
		defer close(done)
		defer cancel()

		page, err := s.resolver.Resolve(resolveCtx, d)

		s.mu.Lock()
		defer s.mu.Unlock()

		if gen != s.generation || s.closed {
			logger.Debug().Msg("Resolution superseded, discarding result")
			return
		}
		if err != nil && (client.IsCancelled(err) || resolveCtx.Err() != nil) {
			logger.Debug().Msg("Resolution cancelled")
			return
		}

		state := State{ResolutionID: resolutionID, Descriptor: d, Page: page}
		if err != nil {
			_, state.Retryable = client.IsUpstream(err)
			state.Page = catalog.ResultPage{Items: []catalog.EntitySummary{}}
			state.Err = err
			logger.Warn().Err(err).Bool("retryable", state.Retryable).Msg("Resolution failed")
		}
		s.listener(state)
	}()

	return done
}

// Retry re-submits the last descriptor. It returns a closed channel when
// nothing has been submitted yet.
func (s *Session) Retry(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	d, ok := s.last, s.hasLast
	s.mu.Unlock()

	if !ok {
		done := make(chan struct{})
		close(done)
		return done
	}
	return s.Submit(ctx, d)
}

// Close cancels the in-flight resolution. Later submissions are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
