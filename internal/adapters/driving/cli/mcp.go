package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/proctok/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the collection to AI assistants",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol server",
	Long: `Serve the stored chunks over the Model Context Protocol.

Tools:
  search            similarity search returning ranked chunks
  collection_stats  chunk count and sample metadata

Resources:
  proctok://collection/stats
  proctok://collection/tokens
  proctok://search/{query}

The server speaks JSON-RPC on stdin/stdout unless --port is given, in which
case it serves streamable HTTP on that port until interrupted. To register
it with an assistant, point the command at this binary:

  {"mcpServers": {"proctok": {"command": "proctok", "args": ["mcp", "serve"]}}}`,
	Example: `  proctok mcp serve
  proctok mcp serve --store sqlite --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	search, err := requireSearch(ctx)
	if err != nil {
		return err
	}
	tokens, err := requireTokens(ctx)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Search: search, Tokens: tokens})
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}

	if mcpPort <= 0 {
		return server.Run(ctx)
	}
	addr := net.JoinHostPort("", strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
