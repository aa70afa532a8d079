package main

import (
	"github.com/spf13/cobra"

	"github.com/aniayu/storefront-go/internal/config"
	"github.com/aniayu/storefront-go/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres browser store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return db.RunMigrations(cfg.DatabaseDSN, newLogger())
		},
	}
}
