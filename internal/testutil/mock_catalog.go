// Package testutil provides testing utilities for the catalog explorer.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockEntity is one record served by MockCatalog.
type MockEntity struct {
	ID    int
	Name  string
	Types []string
}

// MockCatalog is a configurable mock of the upstream catalog API.
// It serves /pokemon (list), /pokemon/{idOrName} (detail) and /type.
type MockCatalog struct {
	server   *httptest.Server
	mu       sync.RWMutex
	entities []MockEntity
	handlers map[string]http.HandlerFunc
	failures map[string]int
	delays   map[string]time.Duration
	requests map[string]int
	total    int
}

// NewMockCatalog creates a mock catalog serving the given entities in id order.
func NewMockCatalog(entities ...MockEntity) *MockCatalog {
	sorted := append([]MockEntity(nil), entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	mock := &MockCatalog{
		entities: sorted,
		handlers: make(map[string]http.HandlerFunc),
		failures: make(map[string]int),
		delays:   make(map[string]time.Duration),
		requests: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.serveHTTP))
	return mock
}

// URL returns the mock server base URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears all request counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.total = 0
}

// SetHandler overrides the handler for an exact path.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetFailure makes an exact path answer with the given status code.
func (m *MockCatalog) SetFailure(path string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = statusCode
}

// SetDelay delays responses for an exact path. The delay ends early when the
// client goes away.
func (m *MockCatalog) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

// RequestCount returns the number of requests received for an exact path.
func (m *MockCatalog) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests received for all paths.
func (m *MockCatalog) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

func (m *MockCatalog) serveHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimRight(r.URL.Path, "/")

	m.mu.Lock()
	m.requests[path]++
	m.total++
	handler, hasHandler := m.handlers[path]
	failure := m.failures[path]
	delay := m.delays[path]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}

	if hasHandler {
		handler(w, r)
		return
	}

	if failure != 0 {
		writeJSON(w, failure, map[string]string{"error": http.StatusText(failure)})
		return
	}

	switch {
	case path == "/pokemon":
		m.serveList(w, r)
	case strings.HasPrefix(path, "/pokemon/"):
		m.serveDetail(w, strings.TrimPrefix(path, "/pokemon/"))
	case path == "/type":
		m.serveTypes(w)
	default:
		http.NotFound(w, r)
	}
}

func (m *MockCatalog) serveList(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	m.mu.RLock()
	all := m.entities
	m.mu.RUnlock()

	start := min(offset, len(all))
	end := min(offset+limit, len(all))

	results := make([]map[string]string, 0, end-start)
	for _, e := range all[start:end] {
		results = append(results, map[string]string{
			"name": e.Name,
			"url":  fmt.Sprintf("%s/pokemon/%d/", m.server.URL, e.ID),
		})
	}

	var next, previous *string
	if end < len(all) {
		n := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", m.server.URL, end, limit)
		next = &n
	}
	if start > 0 {
		p := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", m.server.URL, max(start-limit, 0), limit)
		previous = &p
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(all),
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func (m *MockCatalog) serveDetail(w http.ResponseWriter, idOrName string) {
	entity, ok := m.find(idOrName)
	if !ok {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
		return
	}

	types := make([]map[string]interface{}, 0, len(entity.Types))
	for i, t := range entity.Types {
		types = append(types, map[string]interface{}{
			"slot": i + 1,
			"type": map[string]string{"name": t, "url": fmt.Sprintf("%s/type/%s/", m.server.URL, t)},
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":              entity.ID,
		"name":            entity.Name,
		"height":          entity.ID%20 + 3,
		"weight":          entity.ID*10 + 5,
		"base_experience": 64,
		"types":           types,
		"abilities": []map[string]interface{}{
			{"ability": map[string]string{"name": "overgrow"}, "is_hidden": false},
		},
		"stats": []map[string]interface{}{
			{"base_stat": 45, "stat": map[string]string{"name": "hp"}},
		},
		"sprites": map[string]interface{}{
			"front_default": fmt.Sprintf("%s/sprites/%d.png", m.server.URL, entity.ID),
			"other": map[string]interface{}{
				"official-artwork": map[string]string{
					"front_default": fmt.Sprintf("%s/artwork/%d.png", m.server.URL, entity.ID),
				},
			},
		},
	})
}

func (m *MockCatalog) serveTypes(w http.ResponseWriter) {
	m.mu.RLock()
	seen := make(map[string]bool)
	for _, e := range m.entities {
		for _, t := range e.Types {
			seen[t] = true
		}
	}
	m.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for t := range seen {
		names = append(names, t)
	}
	sort.Strings(names)

	results := make([]map[string]string, 0, len(names))
	for _, n := range names {
		results = append(results, map[string]string{"name": n, "url": fmt.Sprintf("%s/type/%s/", m.server.URL, n)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(results), "results": results})
}

func (m *MockCatalog) find(idOrName string) (MockEntity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id, err := strconv.Atoi(idOrName); err == nil {
		for _, e := range m.entities {
			if e.ID == id {
				return e, true
			}
		}
		return MockEntity{}, false
	}
	for _, e := range m.entities {
		if e.Name == idOrName {
			return e, true
		}
	}
	return MockEntity{}, false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// DetailPath returns the mock path of the detail endpoint for an id.
func DetailPath(id int) string {
	return fmt.Sprintf("/pokemon/%d", id)
}

// StarterEntities returns a small, realistic slice of the catalog.
func StarterEntities() []MockEntity {
	return []MockEntity{
		{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}},
		{ID: 2, Name: "ivysaur", Types: []string{"grass", "poison"}},
		{ID: 3, Name: "venusaur", Types: []string{"grass", "poison"}},
		{ID: 4, Name: "charmander", Types: []string{"fire"}},
		{ID: 5, Name: "charmeleon", Types: []string{"fire"}},
		{ID: 6, Name: "charizard", Types: []string{"fire", "flying"}},
		{ID: 7, Name: "squirtle", Types: []string{"water"}},
		{ID: 8, Name: "wartortle", Types: []string{"water"}},
		{ID: 9, Name: "blastoise", Types: []string{"water"}},
		{ID: 25, Name: "pikachu", Types: []string{"electric"}},
		{ID: 26, Name: "raichu", Types: []string{"electric"}},
		{ID: 37, Name: "vulpix", Types: []string{"fire"}},
		{ID: 38, Name: "ninetales", Types: []string{"fire"}},
		{ID: 58, Name: "growlithe", Types: []string{"fire"}},
		{ID: 59, Name: "arcanine", Types: []string{"fire"}},
		{ID: 77, Name: "ponyta", Types: []string{"fire"}},
		{ID: 78, Name: "rapidash", Types: []string{"fire"}},
		{ID: 126, Name: "magmar", Types: []string{"fire"}},
		{ID: 136, Name: "flareon", Types: []string{"fire"}},
		{ID: 146, Name: "moltres", Types: []string{"fire", "flying"}},
		{ID: 150, Name: "mewtwo", Types: []string{"psychic"}},
		{ID: 151, Name: "mew", Types: []string{"psychic"}},
	}
}

// SequentialEntities returns n entities with ids 1..n named "entity-NNNN".
// Even ids get the "even" type, odd ids the "odd" type.
func SequentialEntities(n int) []MockEntity {
	out := make([]MockEntity, 0, n)
	for i := 1; i <= n; i++ {
		typ := "odd"
		if i%2 == 0 {
			typ = "even"
		}
		out = append(out, MockEntity{ID: i, Name: fmt.Sprintf("entity-%04d", i), Types: []string{typ}})
	}
	return out
}
