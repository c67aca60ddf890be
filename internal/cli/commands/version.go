package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/crowdstat/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display crowdstat version, build information and the compiled-in warehouse types.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "crowdstat v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit %s, built %s, %s\n", commit, buildDate, runtime.Version())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "warehouses: %s\n", strings.Join(adapter.ListAdapters(), ", "))
		},
	}
}
