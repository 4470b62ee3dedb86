// Package cli defines the lifecheck command tree: serve runs the API
// server, scan runs one escalation pass for a cron trigger, migrate applies
// the schema, version prints build info.
package cli

import (
	stdlog "log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lifecheck",
		Short:         "Daily check-in tracking and missed-check-in escalation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug level logging")

	root.AddCommand(
		newServeCommand(opts),
		newScanCommand(opts),
		newMigrateCommand(opts),
		newVersionCommand(),
	)
	return root
}

func setupLogger(debug bool) *zap.SugaredLogger {
	var zlog *zap.Logger
	var err error
	if debug {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return zlog.Sugar()
}
