package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
)

// runHintBackfill is the body of the scheduled backfill job.
func (app *application) runHintBackfill() {
	ctx := context.Background()
	log := app.logger.With(slog.String("job", "hint_backfill"))

	result, err := app.vocabulary.BackfillHints(ctx)
	switch {
	case errors.Is(err, vocabulary.ErrBackfillInProgress):
		log.Info("hint backfill already running, skipping")
		return
	case err != nil:
		log.Error("hint backfill failed", slog.String("error", err.Error()))
		return
	}

	log.Info("hint backfill finished",
		slog.Int("candidates", result.Candidates),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
}

// scheduleJobs starts the background scheduler. It returns nil when no job
// is configured or no generator is available to run one.
func (app *application) scheduleJobs() (*gocron.Scheduler, error) {
	expr := app.config.Jobs.HintBackfillCron
	if expr == "" {
		return nil, nil
	}
	if app.generator == nil {
		app.logger.Warn("hint backfill is scheduled but no generator is configured, not scheduling",
			slog.String("cron", expr))
		return nil, nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if _, err := s.Cron(expr).Do(app.runHintBackfill); err != nil {
		return nil, fmt.Errorf("invalid hint backfill schedule %q: %w", expr, err)
	}

	s.StartAsync()
	app.logger.Info("hint backfill scheduled", slog.String("cron", expr))
	return s, nil
}
