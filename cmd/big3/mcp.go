// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/big3/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and reads and writes the same
store as the CLI.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "big3": {
        "command": "big3",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_stats          Profile, score, rank progress and token budget
  compute_score      Wilks score and rank for a bodyweight and total
  estimate_1rm       Epley one-rep-max estimate
  get_ranks          The full rank ladder
  log_weight         Record bodyweight for a date
  add_meal           Add a meal entry
  list_meals         A day's meals and totals
  list_sessions      Recent sessions with volume
  log_set            Record a set in a day's session
  complete_session   Complete a session and update 1RMs

AVAILABLE RESOURCES:

  big3://stats              Score, goals, weight trend and tokens
  big3://sessions/recent    Recent session volumes
  big3://today              Today's snapshot, menu and meals`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, cfg.IsStrict())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
