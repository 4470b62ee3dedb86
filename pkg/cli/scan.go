package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/diedornot/lifecheck/pkg/config"
)

func newScanCommand(opts *rootOptions) *cobra.Command {
	var (
		thresholdDays float64
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one escalation scan and print the run report",
		Long: `Run a single scan-and-notify pass and print the run report as JSON.
Intended to be invoked from cron or a similar external scheduler; the
process exits non-zero only when the run could not start at all.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := setupLogger(opts.debug)
			defer func() { _ = log.Sync() }()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			cfg.Defaults()

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			service, err := buildScanService(cfg, st, log)
			if err != nil {
				return err
			}

			threshold := cfg.Escalation.ThresholdDays
			if thresholdDays > 0 {
				threshold = thresholdDays
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			report, err := service.Run(ctx, time.Now(), threshold)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().Float64Var(&thresholdDays, "threshold-days", 0,
		"override the configured silence threshold in days")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"abort the run after this duration and return a partial report")
	return cmd
}
