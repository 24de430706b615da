package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/logger"
	"github.com/imyousuf/CodeSentry/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  `Commands for running the MCP (Model Context Protocol) server.`,
	}

	mcpCmd.AddCommand(newMCPServeCmd())
	return mcpCmd
}

func newMCPServeCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start an MCP server over stdin/stdout.

The server exposes the analyze_file and analyze_project tools to MCP
clients. It reads requests from stdin and writes responses to stdout, so
logs go to stderr, or to --log when set.

This command is typically launched by an MCP client, not run directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Reports are returned to the client, never coloured.
			cfg.Report.Color = false
			s, err := openSession(cfg, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file %s: %w", logFile, err)
				}
				defer f.Close()
				level := cfg.Log.Level
				if verbose {
					level = "debug"
				}
				s.log = logger.New(level, "codesentry", f)
			}

			server := mcp.NewServer(mcp.Config{
				Runner:    s.runner(),
				Discovery: s.discoveryOptions(),
				Rules:     s.rules(),
				Version:   Version,
				Logger:    s.log,
			})
			if err := server.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "path to write server logs instead of stderr")

	return cmd
}

