package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/billinghub/internal/audit"
	"github.com/railzwaylabs/billinghub/internal/bootstrap"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/config"
	"github.com/railzwaylabs/billinghub/internal/connection"
	"github.com/railzwaylabs/billinghub/internal/db"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"github.com/railzwaylabs/billinghub/internal/migration"
	"github.com/railzwaylabs/billinghub/internal/observability"
	"github.com/railzwaylabs/billinghub/internal/scheduler"
	"github.com/railzwaylabs/billinghub/internal/server"
	"github.com/railzwaylabs/billinghub/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "billinghub",
		Short:   "Console for Maxio, Stripe and Zuora billing data",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newTreeCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

// hubModules is everything the console needs short of the database.
var hubModules = fx.Options(
	config.Module,
	observability.Module,
	transport.Module,
	cache.Module,
	clock.Module,
	dispatcher.Module,
)

func runServe() {
	app := fx.New(
		hubModules,
		fx.Provide(registerSnowflake),
		db.Module,
		fx.Invoke(migrateEmbedded),
		bootstrap.Module,
		audit.Module,
		connection.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

// migrateEmbedded brings a sqlite audit store up to date on startup. Shared
// databases are migrated with the migrate command and guarded by the schema gate.
func migrateEmbedded(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
	if cfg.Database.Driver != db.DriverSQLite {
		return nil
	}
	log.Info("migrating embedded database", zap.String("dsn", cfg.Database.DSN))
	return migration.Run(conn)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
