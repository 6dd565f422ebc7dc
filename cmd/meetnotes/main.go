package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dgallion1/meetnotes/internal/config"
	"github.com/dgallion1/meetnotes/internal/export"
	"github.com/dgallion1/meetnotes/internal/granola"
	"github.com/dgallion1/meetnotes/internal/metrics"
	"github.com/dgallion1/meetnotes/internal/notes"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code. Deferred cleanup
// finishes before main exits.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "meetnotes",
		Short:        "Relay meeting notes and transcripts as Markdown",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context())
		},
	}
	root.AddCommand(newMCPCmd(), newServeCmd(), newRenderCmd(), newTranscriptCmd())
	return root
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// app holds the components shared by the mcp and serve modes.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	client  *granola.Client
	exports *export.Store
	notes   *notes.Service
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	m := metrics.New()

	client := granola.NewClient(granola.Options{
		BaseURL:       cfg.GranolaBaseURL,
		Timeout:       cfg.GranolaTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		CacheSize:     cfg.DocCacheSize,
		CacheTTL:      cfg.DocCacheTTL,
		Tokens:        cfg.TokenSource(),
		Observer:      m,
		Logger:        log.With("component", "granola"),
	})

	exports, err := export.New(afero.NewOsFs(), export.Options{
		Dir:    cfg.ExportDir,
		TTL:    cfg.ExportTTL,
		Logger: log.With("component", "export"),
		Gauge:  m,
	})
	if err != nil {
		return nil, err
	}
	exports.Start(ctx, min(cfg.ExportTTL, time.Minute))

	svc := notes.NewService(client, exports, notes.Options{
		ListLimitMax: cfg.ListLimitMax,
		MaxDepth:     cfg.MaxRenderDepth,
		Recorder:     m,
		Logger:       log,
	})

	log.Info("export directory ready", "dir", exports.Dir(), "ttl", cfg.ExportTTL.String())
	return &app{cfg: cfg, log: log, metrics: m, client: client, exports: exports, notes: svc}, nil
}

func (a *app) Close() {
	if err := a.exports.Close(); err != nil {
		a.log.Warn("export cleanup failed", "error", err)
	}
}

func loadConfig(validate func(config.Config) error) (config.Config, error) {
	cfg := config.Load()
	if validate != nil {
		if err := validate(cfg); err != nil {
			return cfg, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}
