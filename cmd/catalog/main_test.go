package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/catalog-explorer/internal/testutil"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// setupCLI points the CLI at a mock catalog and an isolated favorites dir.
func setupCLI(t *testing.T) *testutil.MockCatalog {
	t.Helper()

	mock := testutil.NewMockCatalog(testutil.StarterEntities()...)
	t.Cleanup(mock.Close)

	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_UPSTREAM_BASE_URL", mock.URL())
	t.Setenv("CATALOG_UPSTREAM_RATE_LIMIT", "0")
	t.Setenv("CATALOG_FAVORITES_PATH", t.TempDir())
	t.Setenv("CATALOG_LOG_LEVEL", "disabled")

	return mock
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList_JSON(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "list", "--output", "json")
	require.NoError(t, err)

	var page catalog.ResultPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 22, page.Total)
	assert.Len(t, page.Items, 20)
	assert.True(t, page.HasMore)
	assert.Equal(t, "bulbasaur", page.Items[0].Name)
}

func TestList_FilteredByTextAndType(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "list", "--q", "char", "--type", "fire", "--sort", "name", "-o", "json")
	require.NoError(t, err)

	var page catalog.ResultPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 3)
	assert.Equal(t, "charizard", page.Items[0].Name)
	assert.Equal(t, "charmander", page.Items[1].Name)
	assert.Equal(t, "charmeleon", page.Items[2].Name)
	assert.Equal(t, 3, page.Total)
}

func TestList_PageFarPastTheEnd(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "list", "--q", "char", "--page", "9223372036854775807", "-o", "json")
	require.NoError(t, err)

	var page catalog.ResultPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.HasMore)
}

func TestList_Table(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "list", "--q", "pikachu")
	require.NoError(t, err)

	assert.Contains(t, out, "pikachu")
	assert.Contains(t, out, "Showing 1 of 1")
	assert.NotContains(t, out, "raichu")
}

func TestList_InvalidSort(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "list", "--sort", "weight")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrInvalidDescriptor)
}

func TestList_UpstreamFailure(t *testing.T) {
	mock := setupCLI(t)
	mock.SetFailure("/pokemon", 500)

	_, err := execute(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing entities")
}

func TestInvalidOutputFormat(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "list", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestInvalidLogLevel(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "types", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestShow(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name string
		arg  string
	}{
		{name: "by id", arg: "25"},
		{name: "by name", arg: "Pikachu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", "show", tt.arg, "-o", "json")
			require.NoError(t, err)

			var detail catalog.EntityDetail
			require.NoError(t, json.Unmarshal([]byte(out), &detail))
			assert.Equal(t, 25, detail.ID)
			assert.Equal(t, "pikachu", detail.Name)
			assert.Equal(t, []string{"electric"}, detail.Types)
		})
	}
}

func TestShow_Table(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "show", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "charizard")
	assert.Contains(t, out, "fire, flying")
}

func TestShow_NotFound(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "show", "missingno")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `entity "missingno" not found`)
}

func TestTypes(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "types", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- fire")
	assert.Contains(t, out, "- psychic")
}

func TestFavorites_ToggleAndList(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "favorites", "toggle", "25", "-o", "json")
	require.NoError(t, err)
	var state favoriteState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, favoriteState{ID: 25, Favorite: true}, state)

	_, err = execute(t, "", "favorites", "toggle", "4")
	require.NoError(t, err)

	out, err = execute(t, "", "favorites", "list", "-o", "json")
	require.NoError(t, err)
	var view favoritesView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []int{25, 4}, view.IDs)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "pikachu", view.Items[0].Name)
	assert.Equal(t, "charmander", view.Items[1].Name)

	out, err = execute(t, "", "favorites", "toggle", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 25 from favorites")

	out, err = execute(t, "", "list", "--q", "charmander")
	require.NoError(t, err)
	assert.Contains(t, out, "yes")
}

func TestFavorites_SQLiteBackend(t *testing.T) {
	setupCLI(t)
	t.Setenv("CATALOG_FAVORITES_BACKEND", "sqlite")

	_, err := execute(t, "", "favorites", "toggle", "150")
	require.NoError(t, err)

	out, err := execute(t, "", "favorites", "list", "-o", "json")
	require.NoError(t, err)
	var view favoritesView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []int{150}, view.IDs)
}

func TestFavorites_ToggleInvalidID(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "favorites", "toggle", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestFavorites_ListEmpty(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "favorites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet")
}
