package main

import (
	"github.com/spf13/cobra"

	mcpAdapter "github.com/aurida/helpline/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Exposes the conversation engine as MCP tools (start_conversation, send_message) so agent hosts can drive support conversations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpAdapter.NewServer(a.service, version).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
