package cli

import (
	"github.com/spf13/cobra"

	"github.com/diedornot/lifecheck/pkg/api"
	"github.com/diedornot/lifecheck/pkg/checkin"
	"github.com/diedornot/lifecheck/pkg/config"
	"github.com/diedornot/lifecheck/pkg/scan"
	"github.com/diedornot/lifecheck/pkg/users"
	"github.com/diedornot/lifecheck/pkg/version"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the lifecheck API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := setupLogger(opts.debug)
			defer func() { _ = log.Sync() }()
			log.With("version", version.Version).Info("Starting lifecheck api")

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			cfg.Defaults()
			if opts.debug {
				log.Infof("%#v", cfg)
			}

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			scanService, err := buildScanService(cfg, st, log)
			if err != nil {
				return err
			}
			ledger := checkin.NewLedger(st, log)

			server := api.NewServer(log.Desugar(), cfg, opts.debug)
			if err := server.RegisterAll([]api.APIController{
				checkin.NewController(log, ledger),
				scan.NewController(log, scanService, cfg.Escalation.ThresholdDays, nil),
				users.NewController(log, st),
			}); err != nil {
				return err
			}

			return server.Listen()
		},
	}
}
