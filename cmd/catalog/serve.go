package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-explorer/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and favorites over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(deps *Deps) error {
		if addr == "" {
			addr = deps.Config.Server.Addr
		}
		gin.SetMode(gin.ReleaseMode)

		srv := server.New(deps.Resolver, deps.Client, deps.Favorites, deps.Logger)
		return srv.Run(ctx, addr)
	})
}
