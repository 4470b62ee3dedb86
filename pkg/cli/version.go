package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/diedornot/lifecheck/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.GetBuildInfo())
		},
	}
}
