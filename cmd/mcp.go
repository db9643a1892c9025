package cmd

import (
	"github.com/huangsam/contacts/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the contacts MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents list, read and edit
contacts through the same cached data access layer as the CLI.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, service, version)
	},
}
