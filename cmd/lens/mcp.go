package main

import (
	"github.com/spf13/cobra"

	"github.com/sorsai/lens"
	lensmcp "github.com/sorsai/lens/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

This lets MCP-compatible agents read the forecast dashboard surfaces and
ask the copilot directly.

Configuration example:

  {
    "mcpServers": {
      "lens": {
        "command": "lens",
        "args": ["mcp"],
        "env": {
          "SORS_API_URL": "http://localhost:8000"
        }
      }
    }
  }

Environment variables:
  SORS_API_URL    Base URL of the SorsAI console (empty runs offline)
  SORS_API_KEY    API key for console authentication
  LENS_SOURCE_ID  Client identifier (default: hostname)
  LENS_TIMEOUT    Request timeout (default: 30s)`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	client, err := lens.New(loadConfig(), lens.ActionHandlers{})
	if err != nil {
		return err
	}
	defer client.Close()

	server := lensmcp.NewServer(client)
	return server.Run()
}
