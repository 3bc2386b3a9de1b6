// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gewnthar/tollwatch/config"
	"github.com/gewnthar/tollwatch/database"
	"github.com/gewnthar/tollwatch/logging"
	"github.com/gewnthar/tollwatch/scraper"
	"github.com/gewnthar/tollwatch/services"
	"github.com/gewnthar/tollwatch/snapshot"
)

var rootCmd = &cobra.Command{
	Use:           "tollwatch",
	Short:         "tollwatch snapshots ERP gantry locations and toll rates and reports what changed.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// run executes one pass. A fatal error is logged before the log file is
// released so it reaches the process log as well as stderr.
func run(ctx context.Context) (err error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		slog.Error("Error loading configuration", "err", err)
		return fmt.Errorf("error loading configuration: %w", err)
	}

	closeLog, err := logging.Setup(cfg.Logging)
	if err != nil {
		slog.Error("Error setting up logging", "err", err)
		return err
	}
	defer func() {
		if err != nil {
			slog.Error("Extraction run failed", "err", err)
		}
		closeLog()
	}()

	slog.Info("Starting ERP data extraction",
		"markers", cfg.Sources.MarkersKML,
		"data_dir", cfg.Storage.DataDirectory,
		"ledger", cfg.Database.Enabled,
	)

	var ledger services.Ledger
	if cfg.Database.Enabled {
		if err := database.InitDB(cfg.Database); err != nil {
			return fmt.Errorf("error initializing database: %w", err)
		}
		defer database.CloseDB()
		ledger = database.Ledger{}
	}

	fetcher := scraper.NewHTTPFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	repo := snapshot.NewRepository(cfg.Storage.DataDirectory, cfg.Storage.DiffDirectory)

	return services.NewPipeline(cfg, fetcher, repo, ledger).Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
