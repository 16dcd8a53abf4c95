// Package main provides the entry point for the catalog CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	globalConfig   string
	globalOutput   string
	globalLogLevel string
)

func main() {
	// A missing .env file is fine; the environment and config file still apply
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Browse, search and bookmark the remote entity catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutputFormat(globalOutput)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfig, "config", "c", "", "Config file (default ./catalog.yaml or $HOME/.config/catalog-explorer/catalog.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globalOutput, "output", "o", OutputFormatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level override: debug, info, warn, error or disabled")

	rootCmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newTypesCmd(),
		newFavoritesCmd(),
		newExploreCmd(),
		newServeCmd(),
	)

	return rootCmd
}
