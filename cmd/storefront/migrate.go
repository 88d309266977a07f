package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nuxtz/storefront/internal/config"
	"github.com/nuxtz/storefront/migrations"
)

const migrateTimeout = 30 * time.Second

func migrateCmd(envFile *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile, bootstrapLogger())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat)

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			pool, err := openPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if dryRun {
				pending, err := migrations.Pending(ctx, pool)
				if err != nil {
					return fmt.Errorf("list pending migrations: %w", err)
				}
				logger.Info().Strs("pending", pending).Int("count", len(pending)).Msg("pending migrations")
				return nil
			}

			if err := migrations.Apply(ctx, pool, logger); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info().Msg("migrations up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}
