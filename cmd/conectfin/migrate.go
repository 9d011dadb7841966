package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/db"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)

			if err := db.Migrate(cfg.Database.DSN); err != nil {
				return err
			}
			logger.L.Info("migrations applied")
			return nil
		},
	}
}
