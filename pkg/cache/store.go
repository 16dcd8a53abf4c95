package cache

import (
	"context"
	"errors"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

var (
	// ErrCacheMiss indicates the requested id was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store memoizes entity details by id.
//
// Implementations are write-once: the first Set for an id wins and later
// writes for the same id are ignored. Entries never expire.
type Store interface {
	// Get returns the cached detail or ErrCacheMiss.
	Get(ctx context.Context, id int) (*catalog.EntityDetail, error)

	// Set stores detail under id unless an entry already exists.
	Set(ctx context.Context, id int, detail *catalog.EntityDetail) error
}
