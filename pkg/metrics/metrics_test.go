package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/Sternrassler/catalog-explorer/pkg/cache"
	_ "github.com/Sternrassler/catalog-explorer/pkg/pagination"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range Names {
		if !strings.HasPrefix(name, "catalog_") {
			t.Errorf("metric %q lacks the catalog_ prefix", name)
		}
		if seen[name] {
			t.Errorf("metric %q listed twice", name)
		}
		seen[name] = true
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"catalog_cache_misses_total", "catalog_fanout_dropped_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition is missing %s", name)
		}
	}
}
