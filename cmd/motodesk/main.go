package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/motodesk/motodesk/internal/clock"
	"github.com/motodesk/motodesk/internal/config"
	"github.com/motodesk/motodesk/internal/contractor"
	"github.com/motodesk/motodesk/internal/database"
	"github.com/motodesk/motodesk/internal/invoicing"
	"github.com/motodesk/motodesk/internal/observability"
	"github.com/motodesk/motodesk/internal/order"
	"github.com/motodesk/motodesk/internal/product"
	productservice "github.com/motodesk/motodesk/internal/product/service"
	"github.com/motodesk/motodesk/internal/redis"
	"github.com/motodesk/motodesk/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "motodesk",
		Short: "Parts-distributor invoicing back office",
	}
	root.AddCommand(newServeCmd(), newSyncProductsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the catalog sync worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSyncProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-products",
		Short: "Mirror the distributor part catalog once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncProducts()
		},
	}
}

func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(func() clock.Clock { return clock.SystemClock{} }),
		database.Module,
		redis.Module,
		order.Module,
		product.Module,
		contractor.Module,
		invoicing.Module,
	)
}

func runServe() {
	app := fx.New(
		baseModules(),
		server.Module,
		fx.Invoke(runCatalogSync),
	)
	app.Run()
}

// runCatalogSync keeps the part catalog mirrored on the configured
// interval while the server runs.
func runCatalogSync(lc fx.Lifecycle, syncer *productservice.Syncer) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go syncer.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runSyncProducts() error {
	var syncer *productservice.Syncer
	app := fx.New(
		baseModules(),
		fx.Populate(&syncer),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	syncCtx, cancelSync := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancelSync()
	return syncer.SyncOnce(syncCtx)
}
