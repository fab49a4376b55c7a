// Package cmd provides the mcp-docs CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mcp-docs/mcp-docs/internal/logging"
	"github.com/mcp-docs/mcp-docs/pkg/version"
)

// NewRootCmd builds the mcp-docs root command and its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mcp-docs",
		Short:   "Hybrid search over ingested documentation, exposed as MCP tools",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupDefault()
			return nil
		},
	}
	root.SetVersionTemplate("mcp-docs version {{.Version}}\n")

	root.AddCommand(newIngestCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSourcesCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
