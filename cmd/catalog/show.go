package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-explorer/pkg/client"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID_OR_NAME",
		Short: "Show the detail record of one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, idOrName string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		detail, err := deps.Resolver.Detail(ctx, idOrName)
		if err != nil {
			if client.IsNotFound(err) {
				return fmt.Errorf("entity %q not found", idOrName)
			}
			return fmt.Errorf("fetching entity: %w", err)
		}

		return render(cmd.OutOrStdout(), globalOutput, detail, func(w io.Writer) error {
			return renderDetailTable(w, detail, deps.Favorites)
		})
	})
}
