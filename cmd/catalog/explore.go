package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/favorites"
	"github.com/Sternrassler/catalog-explorer/pkg/resolver"
)

// retryCommand on its own line re-submits the last query.
const retryCommand = ":retry"

// exploreEvent is one published session state in json/yaml output.
type exploreEvent struct {
	ResolutionID string                  `json:"resolution_id" yaml:"resolution_id"`
	Query        catalog.QueryDescriptor `json:"query" yaml:"query"`
	Loading      bool                    `json:"loading" yaml:"loading"`
	Page         *catalog.ResultPage     `json:"page,omitempty" yaml:"page,omitempty"`
	Error        string                  `json:"error,omitempty" yaml:"error,omitempty"`
	Retryable    bool                    `json:"retryable,omitempty" yaml:"retryable,omitempty"`
}

func newExploreCmd() *cobra.Command {
	var typeName, sortKey string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Search interactively, one line of input per keystroke",
		Long: `Shows the catalog view for --type and --sort right away, then reads the
search box contents from stdin, one line per change, and prints every result
the session publishes. Input is debounced: a query is only resolved once
typing pauses, and a newer query supersedes an older one that is still
loading. A line containing only ":retry" repeats the last query.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := catalog.QueryDescriptor{Type: typeName, Sort: catalog.SortKey(sortKey), Page: 1}
			return runExplore(cmd, base)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Type filter applied to every query")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(catalog.SortByID), "Sort by id or name")

	return cmd
}

func runExplore(cmd *cobra.Command, base catalog.QueryDescriptor) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		if err := base.Normalize().Validate(); err != nil {
			return err
		}

		printer := newStatePrinter(cmd.OutOrStdout(), globalOutput, deps.Favorites)
		session := resolver.NewSession(deps.Resolver, printer.print, deps.Logger)
		defer session.Close()

		var (
			mu     sync.Mutex
			latest <-chan struct{}
		)
		track := func(done <-chan struct{}) {
			mu.Lock()
			latest = done
			mu.Unlock()
		}

		debouncer := resolver.NewDebouncer(resolver.DebounceConfig{
			Delay:     deps.Config.Resolver.Debounce,
			MinLength: deps.Config.Resolver.MinQueryLength,
		}, func(text string) {
			d := base
			d.Text = text
			track(session.Submit(ctx, d))
		})
		defer debouncer.Stop()

		// initial view before any input arrives
		track(session.Submit(ctx, base))

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					debouncer.Flush()
					mu.Lock()
					done := latest
					mu.Unlock()
					return waitSettled(ctx, done)
				}
				if strings.TrimSpace(line) == retryCommand {
					debouncer.Flush()
					track(session.Retry(ctx))
					continue
				}
				debouncer.Input(line)
			}
		}
	})
}

func waitSettled(ctx context.Context, done <-chan struct{}) error {
	if done == nil {
		return nil
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

// statePrinter renders published session states. The session serializes calls.
type statePrinter struct {
	w      io.Writer
	format string
	favs   *favorites.Store
}

func newStatePrinter(w io.Writer, format string, favs *favorites.Store) *statePrinter {
	return &statePrinter{w: w, format: format, favs: favs}
}

func (p *statePrinter) print(state resolver.State) {
	event := exploreEvent{
		ResolutionID: state.ResolutionID,
		Query:        state.Descriptor,
		Loading:      state.Loading,
		Retryable:    state.Retryable,
	}
	if !state.Loading {
		page := state.Page
		event.Page = &page
	}
	if state.Err != nil {
		event.Error = state.Err.Error()
	}

	switch p.format {
	case OutputFormatJSON:
		// one event per line
		_ = json.NewEncoder(p.w).Encode(event)
	case OutputFormatYAML:
		_, _ = io.WriteString(p.w, "---\n")
		_ = render(p.w, OutputFormatYAML, event, nil)
	default:
		p.printTable(state)
	}
}

func (p *statePrinter) printTable(state resolver.State) {
	query := state.Descriptor.Text
	if query == "" {
		query = "(all)"
	}

	switch {
	case state.Loading:
		_, _ = fmt.Fprintf(p.w, "Searching %s...\n", query)
	case state.Err != nil:
		hint := ""
		if state.Retryable {
			hint = " (type " + retryCommand + " to try again)"
		}
		_, _ = fmt.Fprintf(p.w, "Search for %s failed: %v%s\n", query, state.Err, hint)
	default:
		_ = renderPageTable(p.w, state.Page, p.favs)
	}
}
