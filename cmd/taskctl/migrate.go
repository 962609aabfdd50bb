package main

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(30*time.Second, func(ctx context.Context, _ *postgres.Store) error {
			logger.Info("schema applied")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
