package cmd

import (
	"github.com/huangsam/mlscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the mlscore MCP server",
	Long:  `Launch an MCP server over stdio that lets agents score artifacts and query the artifact store.`,
	Args:  cobra.NoArgs,
	// Logs go to stderr so stdout stays reserved for the protocol.
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
