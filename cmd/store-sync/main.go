// Package main provides the store-sync service binary.
//
// store-sync relays store change events from the outbox collection to the
// legacy store manager and exposes an admin surface for stats, on-demand
// publishing and replay.
package main

import (
	"fmt"
	"os"

	"github.com/Sokol111/ecommerce-store-sync/internal/admin"
	"github.com/Sokol111/ecommerce-store-sync/internal/core/config"
	"github.com/Sokol111/ecommerce-store-sync/internal/core/logger"
	"github.com/Sokol111/ecommerce-store-sync/internal/http/server"
	"github.com/Sokol111/ecommerce-store-sync/internal/legacy"
	"github.com/Sokol111/ecommerce-store-sync/internal/outbox"
	"github.com/Sokol111/ecommerce-store-sync/internal/persistence/mongo"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "store-sync",
		Short:   "Relay store change events to the legacy store manager",
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay and the admin HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			newApp().Run()
		},
	}
}

func newApp() *fx.App {
	return fx.New(
		config.NewAppConfigModule(),
		config.NewViperModule(),
		logger.NewZapLoggingModule(),
		mongo.NewMongoModule(),
		legacy.NewLegacyGatewayModule(),
		outbox.NewOutboxModule(),
		server.NewHTTPServerModule(),
		admin.NewAdminModule(),
	)
}
