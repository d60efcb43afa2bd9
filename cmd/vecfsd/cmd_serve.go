package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	vecfsmcp "github.com/vecfs-dev/vecfs/internal/mcp"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  search    — rank stored memories by similarity to a query
  memorize  — embed and store a piece of text
  feedback  — adjust a memory's reinforcement score
  delete    — remove a memory by id

If no embedder is configured the server still starts; search and
memorize calls will return an embedder_unavailable tool error while
feedback and delete remain usable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			disp := newDispatcher(logger)
			defer func() { _ = disp.Store.Close() }()

			srv := vecfsmcp.NewServer(disp, logger)

			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("vecfs: mcp server starting", "transport", "stdio", "file", cfg.Storage.File)

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}
}
