package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/resolver"
)

func decodeEvents(t *testing.T, out string) []exploreEvent {
	t.Helper()

	var events []exploreEvent
	dec := json.NewDecoder(strings.NewReader(out))
	for {
		var e exploreEvent
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

// eventsFor keeps the events of resolutions for the given query text.
func eventsFor(events []exploreEvent, text string) []exploreEvent {
	var out []exploreEvent
	for _, e := range events {
		if e.Query.Text == text {
			out = append(out, e)
		}
	}
	return out
}

func TestExplore_ShowsInitialViewWithoutInput(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "", "explore", "-o", "json")
	require.NoError(t, err)

	events := decodeEvents(t, out)
	require.Len(t, events, 2)

	assert.True(t, events[0].Loading)
	assert.Empty(t, events[0].Query.Text)

	initial := events[1]
	assert.False(t, initial.Loading)
	require.NotNil(t, initial.Page)
	assert.Len(t, initial.Page.Items, 20)
	assert.Equal(t, 22, initial.Page.Total)
	assert.True(t, initial.Page.HasMore)
}

func TestExplore_DebouncesKeystrokes(t *testing.T) {
	setupCLI(t)
	// keystrokes arrive faster than this, so only the final text is resolved
	t.Setenv("CATALOG_RESOLVER_DEBOUNCE", "1m")

	out, err := execute(t, "p\npi\npik\npikachu\n", "explore", "-o", "json")
	require.NoError(t, err)

	events := decodeEvents(t, out)
	require.NotEmpty(t, events)
	assert.True(t, events[0].Loading)
	assert.Empty(t, events[0].Query.Text, "the initial view is requested first")

	for _, text := range []string{"p", "pi", "pik"} {
		assert.Empty(t, eventsFor(events, text), "%q should have been coalesced", text)
	}

	searched := eventsFor(events, "pikachu")
	require.Len(t, searched, 2)
	assert.True(t, searched[0].Loading)

	final := searched[1]
	assert.Equal(t, final, events[len(events)-1])
	assert.False(t, final.Loading)
	assert.Equal(t, searched[0].ResolutionID, final.ResolutionID)
	require.NotNil(t, final.Page)
	require.Len(t, final.Page.Items, 1)
	assert.Equal(t, "pikachu", final.Page.Items[0].Name)
}

func TestExplore_ShortInputIgnored(t *testing.T) {
	setupCLI(t)
	t.Setenv("CATALOG_RESOLVER_DEBOUNCE", "1m")

	out, err := execute(t, "p\n", "explore", "-o", "json")
	require.NoError(t, err)

	events := decodeEvents(t, out)
	assert.Len(t, events, 2, "only the initial view")
	assert.Empty(t, eventsFor(events, "p"))
}

func TestExplore_RetryAfterFailure(t *testing.T) {
	mock := setupCLI(t)
	t.Setenv("CATALOG_RESOLVER_DEBOUNCE", "1m")
	mock.SetFailure("/pokemon", 503)

	out, err := execute(t, "char\n:retry\n", "explore", "--type", "fire", "-o", "json")
	require.NoError(t, err)

	events := decodeEvents(t, out)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.False(t, last.Loading)
	assert.NotEmpty(t, last.Error)
	assert.True(t, last.Retryable)
	assert.Equal(t, "char", last.Query.Text)
	assert.Equal(t, "fire", last.Query.Type)
	require.NotNil(t, last.Page)
	assert.Empty(t, last.Page.Items)
}

func TestStatePrinter_Table(t *testing.T) {
	var out strings.Builder
	p := newStatePrinter(&out, OutputFormatTable, nil)

	d := catalog.QueryDescriptor{Text: "char", Sort: catalog.SortByID, Page: 1}
	p.print(resolver.State{ResolutionID: "r1", Descriptor: d, Loading: true})
	p.print(resolver.State{ResolutionID: "r1", Descriptor: d, Page: catalog.ResultPage{
		Items: []catalog.EntitySummary{{ID: 4, Name: "charmander"}},
		Total: 1,
	}})
	p.print(resolver.State{ResolutionID: "r2", Descriptor: d, Err: errors.New("boom"), Retryable: true})

	text := out.String()
	assert.Contains(t, text, "Searching char...")
	assert.Contains(t, text, "charmander")
	assert.Contains(t, text, "Showing 1 of 1")
	assert.Contains(t, text, "Search for char failed: boom (type :retry to try again)")
}
