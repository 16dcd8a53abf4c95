package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the entity types usable with --type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd)
		},
	}
}

func runTypes(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		types, err := deps.Client.ListTypes(ctx)
		if err != nil {
			return fmt.Errorf("listing types: %w", err)
		}

		return render(cmd.OutOrStdout(), globalOutput, types, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header("Type")
			for _, t := range types {
				_ = table.Append([]string{t})
			}
			_ = table.Render()
			return nil
		})
	})
}
