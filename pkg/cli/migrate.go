package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diedornot/lifecheck/pkg/config"
	"github.com/diedornot/lifecheck/pkg/store"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations (postgres driver only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := setupLogger(opts.debug)
			defer func() { _ = log.Sync() }()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			cfg.Defaults()

			if cfg.Store.Driver != "postgres" {
				return fmt.Errorf("migrations only apply to the postgres driver, got %q", cfg.Store.Driver)
			}

			pg, err := store.NewPostgres(cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = pg.Close() }()

			if err := pg.RunMigrations(cmd.Context()); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
