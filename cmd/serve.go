package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/logging"
	"github.com/hamen/android-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the device tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes device control as
tools. AI agents call the tools directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients that spawn the server)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  android-mcp serve
  android-mcp serve --serial emulator-5554 --timeout 15s
  android-mcp serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http (default from config, stdio)")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http transport (default from config, 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport := cfg.Transport
	if cmd.Flags().Changed("transport") {
		transport, _ = cmd.Flags().GetString("transport")
	}
	port := cfg.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	srv, err := server.New(newService(), logging.Component(logger, "server"))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return srv.Serve(transport, port)
}
