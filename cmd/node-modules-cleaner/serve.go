package main

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as an MCP server over stdio",
		Long: heredoc.Doc(`
			Serves the scan, delete and size operations as Model Context Protocol
			tools on stdin/stdout. Logs go to stderr.

			The delete tool only removes paths when called with confirm set to "yes".
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := mcp.NewServer(&mcp.Implementation{
				Name:    "node-modules-cleaner",
				Version: version,
			}, nil)

			registerTools(server, &handlers{cfg: a.cfg, log: a.log})

			a.log.Debug("serving MCP over stdio", zap.String("version", version))
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}
