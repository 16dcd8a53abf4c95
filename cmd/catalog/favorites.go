package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

type favoritesView struct {
	IDs   []int                   `json:"ids" yaml:"ids"`
	Items []catalog.EntitySummary `json:"items" yaml:"items"`
}

type favoriteState struct {
	ID       int  `json:"id" yaml:"id"`
	Favorite bool `json:"favorite" yaml:"favorite"`
}

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite entities",
	}

	cmd.AddCommand(newFavoritesListCmd(), newFavoritesToggleCmd())
	return cmd
}

func newFavoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite entities in the order they were added",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesList(cmd)
		},
	}
}

func newFavoritesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Add an entity to the favorites, or remove it if already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid id %q: must be a positive integer", args[0])
			}
			return runFavoritesToggle(cmd, id)
		},
	}
}

func runFavoritesList(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		ids := deps.Favorites.List()
		items, err := deps.Resolver.Summaries(ctx, ids)
		if err != nil {
			return fmt.Errorf("resolving favorites: %w", err)
		}

		view := favoritesView{IDs: ids, Items: items}
		return render(cmd.OutOrStdout(), globalOutput, view, func(w io.Writer) error {
			if len(items) == 0 {
				_, _ = io.WriteString(w, "No favorites yet\n")
				return nil
			}
			renderSummaries(w, items, deps.Favorites)
			return nil
		})
	})
}

func runFavoritesToggle(cmd *cobra.Command, id int) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		favorite, err := deps.Favorites.Toggle(ctx, id)
		if err != nil {
			return fmt.Errorf("saving favorites: %w", err)
		}

		state := favoriteState{ID: id, Favorite: favorite}
		return render(cmd.OutOrStdout(), globalOutput, state, func(w io.Writer) error {
			if favorite {
				_, _ = fmt.Fprintf(w, "Added %d to favorites\n", id)
			} else {
				_, _ = fmt.Fprintf(w, "Removed %d from favorites\n", id)
			}
			return nil
		})
	})
}
