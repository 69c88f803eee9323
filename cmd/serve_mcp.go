package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/eddychk/viagoscrap/mcp"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the MCP server on stdio",
	Long:  "Expose tracked events, scrape runs and price history as MCP tools for LLM clients.",
	RunE:  runServeMCP,
}

var serveMCPHTTPCmd = &cobra.Command{
	Use:   "serve-mcp-http",
	Short: "Start the MCP server over HTTP",
	RunE:  runServeMCPHTTP,
}

func init() {
	serveMCPHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8000)")
	rootCmd.AddCommand(serveMCPCmd)
	rootCmd.AddCommand(serveMCPHTTPCmd)
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting ViagoScrap MCP server on stdio...")
	return mcpserver.Serve(st, newTracker(st, logger))
}

func runServeMCPHTTP(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(addr, cfg.APIKey, st, newTracker(st, logger))
}
