package commands

import (
	"fmt"

	"github.com/Lito-docs/graph/internal/graph"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display lito-graph version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lito-graph v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Knowledge graph compiler, graph schema %s\n", graph.SchemaVersion)
		},
	}
}
