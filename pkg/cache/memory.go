package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// Memory is a process-lifetime detail cache. No eviction, no TTL.
type Memory struct {
	mu      sync.RWMutex
	entries map[int]*catalog.EntityDetail
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[int]*catalog.EntityDetail)}
}

// Get retrieves a detail by id.
func (m *Memory) Get(_ context.Context, id int) (*catalog.EntityDetail, error) {
	m.mu.RLock()
	detail, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}
	CacheHits.WithLabelValues(layerMemory).Inc()
	return detail, nil
}

// Set stores a detail. An existing entry for id is kept.
func (m *Memory) Set(_ context.Context, id int, detail *catalog.EntityDetail) error {
	if detail == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; exists {
		return nil
	}
	m.entries[id] = detail
	CacheEntries.WithLabelValues(layerMemory).Inc()
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
