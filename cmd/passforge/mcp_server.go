package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forest6511/passforge/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpServerCmd)
}

// mcpServerCmd starts the MCP server for AI coding assistant integration
var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start the MCP server for AI coding assistant integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio.

Available tools:
  - password_generate: Generate passwords with entropy, score and strength label
  - password_score:    Score a password without storing or logging it

Fields a client leaves unset in password_generate fall back to the policy in
the config file. Diagnostics go to stderr; stdout carries the protocol.

Example MCP configuration (~/.claude.json):
  {
    "mcpServers": {
      "passforge": {
        "type": "stdio",
        "command": "/path/to/passforge",
        "args": ["mcp-server"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func runMCPServer(parent context.Context) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	server, err := mcp.NewServer(&mcp.ServerOptions{
		Generator: newGenerator(cfg, logger),
		Policy:    cfg.Policy,
		History:   store,
		Logger:    logger,
		Version:   getVersion(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		// Don't report a signal shutdown as an error
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
