// Package vocabulary implements the vocabulary use cases: creating items from
// the Content Generator, editing and reviewing them, and deriving lists and
// the due-queue. All writes go through the store.Repository.
package vocabulary

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/selector"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// Repository is the persistence boundary the service depends on.
// *store.Repository implements it.
type Repository interface {
	Add(ctx context.Context, item *domain.VocabularyItem) error
	Update(ctx context.Context, id uuid.UUID, patch store.ItemPatch) (*domain.VocabularyItem, error)
	UpdateMastery(ctx context.Context, id uuid.UUID, fn store.MasteryFunc) (*domain.VocabularyItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(id uuid.UUID) (*domain.VocabularyItem, error)
	Snapshot() []*domain.VocabularyItem
}

// Service provides the vocabulary operations.
type Service interface {
	// Create asks the generator for headword's content and stores the new item.
	Create(ctx context.Context, headword string) (*domain.VocabularyItem, error)

	// Add stores an item built from caller-supplied content.
	Add(ctx context.Context, params domain.NewItemParams) (*domain.VocabularyItem, error)

	// AddBatch creates an item per headword. Failures are recorded per input
	// and processing continues.
	AddBatch(ctx context.Context, headwords []string) *BatchResult

	// Review applies a review outcome to the item's mastery state.
	Review(ctx context.Context, id uuid.UUID, outcome srs.Outcome) (*domain.VocabularyItem, error)

	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.VocabularyItem, error)
	SetReview(ctx context.Context, id uuid.UUID, review bool) (*domain.VocabularyItem, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.VocabularyItem, error)

	// Edit changes item fields. Mastery is never edited directly.
	Edit(ctx context.Context, id uuid.UUID, patch store.ItemPatch) (*domain.VocabularyItem, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
	List(ctx context.Context, filter selector.Filter) []*domain.VocabularyItem
	DueQueue(ctx context.Context) []*domain.VocabularyItem

	// BackfillHints generates hints for every item that has none.
	BackfillHints(ctx context.Context) (*BackfillResult, error)
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPacing sets the fixed delay between generator calls in batch work and
// the function used to wait it out.
func WithPacing(delay time.Duration, pace func(time.Duration)) Option {
	return func(s *serviceImpl) {
		s.pacingDelay = delay
		if pace != nil {
			s.pace = pace
		}
	}
}

// WithScheduler replaces the spaced-repetition service.
func WithScheduler(scheduler srs.Service) Option {
	return func(s *serviceImpl) {
		if scheduler != nil {
			s.srs = scheduler
		}
	}
}

// WithQueueOrder sets the due-queue order.
func WithQueueOrder(order selector.QueueOrder) Option {
	return func(s *serviceImpl) {
		s.order = order
	}
}

type serviceImpl struct {
	repo        Repository
	generator   generation.Generator
	srs         srs.Service
	order       selector.QueueOrder
	now         func() time.Time
	pacingDelay time.Duration
	pace        func(time.Duration)
	backfill    chan struct{}
	logger      *slog.Logger
}

// NewService creates a Service. generator may be nil, in which case the
// operations that need it return ErrGeneratorUnavailable.
func NewService(repo Repository, generator generation.Generator, log *slog.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &serviceImpl{
		repo:      repo,
		generator: generator,
		srs:       srs.NewDefaultService(),
		order:     selector.OrderInsertion,
		now:       func() time.Time { return time.Now().UTC() },
		pace:      time.Sleep,
		backfill:  make(chan struct{}, 1),
		logger:    log.With(slog.String("component", "vocabulary_service")),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *serviceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *serviceImpl) generate(ctx context.Context, headword string) (*generation.Content, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	return s.generator.Generate(ctx, headword)
}

func (s *serviceImpl) store(ctx context.Context, op string, params domain.NewItemParams) (*domain.VocabularyItem, error) {
	item, err := domain.NewVocabularyItem(params, s.now())
	if err != nil {
		return nil, NewServiceError(op, "invalid item", err)
	}

	if err := s.repo.Add(ctx, item); err != nil {
		if store.IsDuplicateError(err) {
			s.log(ctx).DebugContext(ctx, "duplicate item rejected", slog.String("source_text", item.SourceText))
		}
		return nil, NewServiceError(op, "failed to add item", err)
	}

	s.log(ctx).InfoContext(ctx, "item created",
		slog.String("item_id", item.ID.String()),
		slog.Bool("is_verb", item.IsVerb()))
	return item, nil
}

// Create implements Service.Create
func (s *serviceImpl) Create(ctx context.Context, headword string) (*domain.VocabularyItem, error) {
	content, err := s.generate(ctx, headword)
	if err != nil {
		s.log(ctx).WarnContext(ctx, "content generation failed",
			slog.String("headword", headword),
			slog.String("error", err.Error()))
		return nil, NewServiceError("create", "content generation failed", err)
	}

	params, err := content.ItemParams()
	if err != nil {
		return nil, NewServiceError("create", "unusable generated content", err)
	}

	return s.store(ctx, "create", params)
}

// Add implements Service.Add
func (s *serviceImpl) Add(ctx context.Context, params domain.NewItemParams) (*domain.VocabularyItem, error) {
	return s.store(ctx, "add", params)
}

func (s *serviceImpl) update(
	ctx context.Context,
	op string,
	id uuid.UUID,
	patch store.ItemPatch,
) (*domain.VocabularyItem, error) {
	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, NewServiceError(op, "failed to update item", err)
	}
	return item, nil
}

// Review implements Service.Review
func (s *serviceImpl) Review(ctx context.Context, id uuid.UUID, outcome srs.Outcome) (*domain.VocabularyItem, error) {
	now := s.now()
	updated, err := s.repo.UpdateMastery(ctx, id, func(current domain.Mastery) (domain.Mastery, error) {
		return s.srs.CalculateNextReview(current, outcome, now)
	})
	switch {
	case errors.Is(err, srs.ErrInvalidOutcome):
		return nil, NewServiceError("review", "invalid outcome", err)
	case err != nil:
		return nil, NewServiceError("review", "failed to record review", err)
	}

	s.log(ctx).DebugContext(ctx, "review recorded",
		slog.String("item_id", id.String()),
		slog.String("outcome", string(outcome)),
		slog.Int("review_count", updated.Mastery.ReviewCount),
		slog.String("level", string(updated.Mastery.Level)))
	return updated, nil
}

// SetStatus implements Service.SetStatus
func (s *serviceImpl) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.VocabularyItem, error) {
	return s.update(ctx, "set_status", id, store.ItemPatch{Status: &status})
}

// SetReview implements Service.SetReview
func (s *serviceImpl) SetReview(ctx context.Context, id uuid.UUID, review bool) (*domain.VocabularyItem, error) {
	return s.update(ctx, "set_review", id, store.ItemPatch{Review: &review})
}

// SetActive implements Service.SetActive
func (s *serviceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.VocabularyItem, error) {
	return s.update(ctx, "set_active", id, store.ItemPatch{IsActive: &active})
}

// Edit implements Service.Edit
func (s *serviceImpl) Edit(ctx context.Context, id uuid.UUID, patch store.ItemPatch) (*domain.VocabularyItem, error) {
	patch.Mastery = nil
	return s.update(ctx, "edit", id, patch)
}

// Delete implements Service.Delete
func (s *serviceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return NewServiceError("delete", "failed to delete item", err)
	}
	s.log(ctx).InfoContext(ctx, "item deleted", slog.String("item_id", id.String()))
	return nil
}

// Get implements Service.Get
func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	item, err := s.repo.Get(id)
	if err != nil {
		return nil, NewServiceError("get", "failed to load item", err)
	}
	return item, nil
}

// List implements Service.List
func (s *serviceImpl) List(ctx context.Context, filter selector.Filter) []*domain.VocabularyItem {
	return selector.List(s.repo.Snapshot(), filter)
}

// DueQueue implements Service.DueQueue
func (s *serviceImpl) DueQueue(ctx context.Context) []*domain.VocabularyItem {
	return selector.DueQueue(s.repo.Snapshot(), s.now(), s.order)
}
