package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/dgallion1/meetnotes/internal/config"
	"github.com/dgallion1/meetnotes/internal/tools"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the meeting tools over stdio (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context())
		},
	}
}

// runMCP serves tools on stdin/stdout. Logs go to stderr since stdout
// carries the protocol.
func runMCP(ctx context.Context) error {
	cfg, err := loadConfig(config.Config.Validate)
	if err != nil {
		return err
	}
	log, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		return err
	}
	defer a.Close()

	stdio := server.NewStdioServer(tools.NewServer(a.notes, version, log))
	stdio.SetErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError))

	log.Info("starting meetnotes mcp", "version", version)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("mcp server error", "error", err)
		return err
	}
	log.Info("shutting down...")
	return nil
}
