// Package main runs the vocabulary server: the item API, the quiz session
// and the scheduled hint backfill.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/importer"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/redact"
)

func main() {
	importPath := flag.String("import", "", "add every headword in an .xlsx or .csv file, then exit")
	flag.Parse()

	if err := run(context.Background(), *importPath); err != nil {
		slog.Error("server exited with error", slog.String("error", redact.Error(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, importPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("store_driver", cfg.Store.Driver),
		slog.Bool("generator_configured", cfg.LLM.GeminiAPIKey != ""))

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if importPath != "" {
		defer app.cleanup()
		result, err := importer.Run(ctx, app.vocabulary, importPath, log)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		for _, entry := range result.Entries {
			if entry.Err != nil {
				log.Warn("headword not imported",
					slog.String("headword", entry.Headword),
					slog.String("outcome", entry.Outcome),
					slog.String("error", redact.Error(entry.Err)))
			}
		}
		return nil
	}

	scheduler, err := app.scheduleJobs()
	if err != nil {
		app.cleanup()
		return fmt.Errorf("failed to schedule jobs: %w", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
