package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/events"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/platform/gemini"
	"github.com/phrazzld/scry-lexicon/internal/quiz"
	"github.com/phrazzld/scry-lexicon/internal/selector"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend      store.Backend
	closeBackend func() error

	repo         *store.Repository
	eventEmitter *events.InMemoryEventEmitter
	generator    generation.Generator
	vocabulary   vocabulary.Service
	quiz         *quiz.Session
}

// newApplication wires the repository, generator, service and quiz session
// according to cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	order, err := selector.ParseQueueOrder(cfg.Review.QueueOrder)
	if err != nil {
		return nil, err
	}

	app.backend, app.closeBackend, err = openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Store.Driver, err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.repo, err = store.Open(ctx, app.backend,
		store.WithLogger(logger),
		store.WithEventEmitter(app.eventEmitter),
		store.WithStatusPolicy(domain.StatusPolicy{
			RestoreReviewOnUnarchive: cfg.Review.RestoreReviewOnUnarchive,
		}))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	if cfg.LLM.GeminiAPIKey != "" {
		generator, err := gemini.NewGeminiGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		app.generator = generator
		logger.Info("LLM generator initialized", slog.String("model", cfg.LLM.ModelName))
	} else {
		logger.Warn("no gemini API key configured, headword generation is disabled")
	}

	app.vocabulary, err = vocabulary.NewService(app.repo, app.generator, logger,
		vocabulary.WithPacing(cfg.LLM.PacingDelay, time.Sleep),
		vocabulary.WithQueueOrder(order))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create vocabulary service: %w", err)
	}

	app.quiz = quiz.NewSession(app.repo, app.vocabulary,
		quiz.WithOrder(order),
		quiz.WithLogger(logger))
	app.eventEmitter.RegisterHandler(app.quiz)

	logger.Info("application initialized", slog.Int("item_count", app.repo.Len()))
	return app, nil
}

// cleanup releases the storage connection.
func (app *application) cleanup() {
	if app.closeBackend == nil {
		return
	}
	if err := app.closeBackend(); err != nil {
		app.logger.Error("failed to close backend", slog.String("error", err.Error()))
	}
	app.closeBackend = nil
}
