package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "taskctl",
	Short:         "TaskHub administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Println("Error loading .env file, skipping")
		}

		cfg = config.Load()
		logger = observability.NewLogger(cfg.Env, "taskctl")
		slog.SetDefault(logger)

		return ids.Init(cfg.SnowflakeNode)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

// withStore opens the database, applies the schema and hands fn a store.
func withStore(timeout time.Duration, fn func(ctx context.Context, store *postgres.Store) error) error {
	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := config.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	return fn(ctx, postgres.NewStore(pool, nil))
}
