package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

func newListCmd() *cobra.Command {
	var d catalog.QueryDescriptor
	var sortKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entities",
		Long: `Lists one page of catalog entities.

Without --q or --type the upstream page is shown as is. A name query or a
type filter searches the first 1000 entities; an exact name match is shown
on its own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Sort = catalog.SortKey(sortKey)
			return runList(cmd, d)
		},
	}

	cmd.Flags().StringVarP(&d.Text, "q", "q", "", "Name query (exact match first, then substring)")
	cmd.Flags().StringVarP(&d.Type, "type", "t", "", "Filter by type, e.g. fire (all = no filter)")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(catalog.SortByID), "Sort by id or name")
	cmd.Flags().IntVarP(&d.Page, "page", "p", 1, "Page number, starting at 1")

	return cmd
}

func runList(cmd *cobra.Command, d catalog.QueryDescriptor) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		page, err := deps.Resolver.Resolve(ctx, d)
		if err != nil {
			return fmt.Errorf("listing entities: %w", err)
		}

		return render(cmd.OutOrStdout(), globalOutput, page, func(w io.Writer) error {
			return renderPageTable(w, page, deps.Favorites)
		})
	})
}
