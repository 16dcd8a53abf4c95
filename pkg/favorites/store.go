// Package favorites keeps the user's favorite entity ids.
//
// The set is loaded once when the store is opened and every change is
// written through to the backing Storage. Outer surfaces (CLI, HTTP API) own
// a *Store and pass it where it is needed; the query resolver never uses it.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultKey is the fixed identifier the favorites set is persisted under.
const DefaultKey = "pokemon-favorites"

// ErrInvalidID is returned for ids below 1.
var ErrInvalidID = errors.New("invalid favorite id")

var (
	togglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_favorites_toggles_total",
		Help: "Total favorite toggles by resulting action",
	}, []string{"action"}) // "added", "removed"

	persistErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_favorites_storage_errors_total",
		Help: "Total favorites storage errors by operation",
	}, []string{"operation"}) // "load", "save"
)

// Storage persists the favorites set.
type Storage interface {
	// Load returns the persisted ids, or an empty slice if nothing was saved.
	Load(ctx context.Context) ([]int, error)

	// Save replaces the persisted ids.
	Save(ctx context.Context, ids []int) error
}

// Store is the in-memory favorites set backed by a Storage.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	mu  sync.RWMutex
	ids []int
	set map[int]struct{}
}

// Open creates a store and loads the persisted set.
// A load failure is logged and the store starts empty.
func Open(ctx context.Context, storage Storage, logger zerolog.Logger) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("favorites storage is required")
	}

	s := &Store{
		storage: storage,
		logger:  logger.With().Str("component", "favorites").Logger(),
		set:     make(map[int]struct{}),
	}

	ids, err := storage.Load(ctx)
	if err != nil {
		persistErrors.WithLabelValues("load").Inc()
		s.logger.Error().Err(err).Msg("Failed to load favorites, starting empty")
		return s, nil
	}

	for _, id := range ids {
		if id < 1 {
			continue
		}
		if _, dup := s.set[id]; dup {
			continue
		}
		s.set[id] = struct{}{}
		s.ids = append(s.ids, id)
	}

	s.logger.Debug().Int("count", len(s.ids)).Msg("Favorites loaded")
	return s, nil
}

// Toggle flips membership of id and writes the whole set through.
// It reports whether id is a favorite afterwards. When saving fails the
// in-memory change is kept and the error is returned.
func (s *Store) Toggle(ctx context.Context, id int) (bool, error) {
	if id < 1 {
		return false, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, present := s.set[id]
	if present {
		delete(s.set, id)
		s.ids = remove(s.ids, id)
		togglesTotal.WithLabelValues("removed").Inc()
	} else {
		s.set[id] = struct{}{}
		s.ids = append(s.ids, id)
		togglesTotal.WithLabelValues("added").Inc()
	}
	favorite := !present

	snapshot := make([]int, len(s.ids))
	copy(snapshot, s.ids)
	if err := s.storage.Save(ctx, snapshot); err != nil {
		persistErrors.WithLabelValues("save").Inc()
		s.logger.Error().Err(err).Int("id", id).Msg("Failed to save favorites")
		return favorite, fmt.Errorf("save favorites: %w", err)
	}

	return favorite, nil
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[id]
	return ok
}

// List returns the favorite ids in the order they were added.
func (s *Store) List() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func remove(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
