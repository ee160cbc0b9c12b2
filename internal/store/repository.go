package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/events"
)

// ItemPatch lists the fields an update may change. Nil fields are left alone.
type ItemPatch struct {
	SourceText       *string
	TargetText       *string
	OriginalLanguage *domain.Language
	PartOfSpeech     *string
	ExampleSentences *[]domain.SentencePair
	// Conjugations replaces the table; ClearConjugations removes it.
	Conjugations      *domain.ConjugationTable
	ClearConjugations bool
	Hints             *[]string
	Review            *bool
	Status            *domain.Status
	IsActive          *bool
	// Mastery is written only with state computed by the srs package.
	Mastery *domain.Mastery
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used by the repository.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStatusPolicy sets the side effects applied when a patch changes status.
func WithStatusPolicy(policy domain.StatusPolicy) Option {
	return func(r *Repository) {
		r.policy = policy
	}
}

// WithEventEmitter makes the repository emit an event after each persisted mutation.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(r *Repository) {
		r.emitter = emitter
	}
}

// WithClock overrides the clock used for UpdatedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// Repository is the persistent, duplicate-safe store of vocabulary items.
//
// All reads and writes go through it. Operations are serialized, and every
// mutation is persisted as a whole collection before it becomes visible.
// A failed write leaves the in-memory collection unchanged.
type Repository struct {
	mu      sync.Mutex
	backend Backend
	items   []*domain.VocabularyItem
	policy  domain.StatusPolicy
	emitter events.EventEmitter
	now     func() time.Time
	logger  *slog.Logger
}

// Open loads the collection from backend. A payload that cannot be decoded is
// logged and replaced by an empty collection. Errors reading the backend are
// returned.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Repository, error) {
	if backend == nil {
		return nil, errors.New("backend cannot be nil")
	}

	r := &Repository{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "vocabulary_repository"))

	payload, err := backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNoPayload):
		r.logger.InfoContext(ctx, "no persisted collection, starting empty")
		return r, nil
	case err != nil:
		return nil, NewStoreError("collection", "load", "failed to read backend", err)
	}

	items, err := DecodeCollection(payload)
	if err != nil {
		r.logger.ErrorContext(ctx, "persisted collection is corrupt, resetting to empty",
			slog.String("error", err.Error()),
			slog.Int("payload_bytes", len(payload)))
		return r, nil
	}

	r.items = items
	r.logger.InfoContext(ctx, "collection loaded", slog.Int("item_count", len(items)))
	return r, nil
}

// findDuplicate returns the conflict for source/target among items, ignoring skip.
func findDuplicate(items []*domain.VocabularyItem, source, target string, skip uuid.UUID) *DuplicateItemError {
	for _, existing := range items {
		if existing.ID == skip {
			continue
		}
		if existing.SourceText == source {
			return &DuplicateItemError{Field: "source_text", Value: source, ExistingID: existing.ID}
		}
		if existing.TargetText == target {
			return &DuplicateItemError{Field: "target_text", Value: target, ExistingID: existing.ID}
		}
	}
	return nil
}

func (r *Repository) indexOf(id uuid.UUID) int {
	for i, item := range r.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// persist encodes next and saves it. The caller swaps it in only on success.
func (r *Repository) persist(ctx context.Context, next []*domain.VocabularyItem) error {
	payload, err := EncodeCollection(next)
	if err != nil {
		return NewStoreError("collection", "save", "failed to encode", err)
	}
	if err := r.backend.Save(ctx, payload); err != nil {
		return NewStoreError("collection", "save", "failed to write backend", err)
	}
	return nil
}

func (r *Repository) emit(ctx context.Context, eventType events.ItemEventType, id uuid.UUID) {
	if r.emitter == nil {
		return
	}
	if err := r.emitter.EmitEvent(ctx, events.NewItemEvent(eventType, id)); err != nil {
		r.logger.WarnContext(ctx, "item event handler failed",
			slog.String("event_type", string(eventType)),
			slog.String("item_id", id.String()),
			slog.String("error", err.Error()))
	}
}

// Add appends item to the collection. It returns a *DuplicateItemError if the
// normalized source or target text is already used, making no change.
func (r *Repository) Add(ctx context.Context, item *domain.VocabularyItem) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", ErrInvalidEntity)
	}

	candidate := item.Clone()
	candidate.SourceText = domain.Normalize(candidate.SourceText)
	candidate.TargetText = domain.Normalize(candidate.TargetText)

	r.mu.Lock()
	// Duplicates are reported ahead of other validation failures.
	if conflict := findDuplicate(r.items, candidate.SourceText, candidate.TargetText, uuid.Nil); conflict != nil {
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "rejected duplicate item",
			slog.String("field", conflict.Field),
			slog.String("existing_id", conflict.ExistingID.String()))
		return conflict
	}
	if err := candidate.Validate(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	if r.indexOf(candidate.ID) >= 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: item id %s", ErrDuplicate, candidate.ID)
	}

	next := make([]*domain.VocabularyItem, len(r.items), len(r.items)+1)
	copy(next, r.items)
	next = append(next, candidate)
	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.items = next
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "item added", slog.String("item_id", candidate.ID.String()))
	r.emit(ctx, events.ItemCreated, candidate.ID)
	return nil
}

// applyPatch merges patch into item. Texts are re-normalized and a status
// change goes through the repository's status policy.
func (r *Repository) applyPatch(item *domain.VocabularyItem, patch ItemPatch) error {
	if patch.SourceText != nil {
		item.SourceText = domain.Normalize(*patch.SourceText)
	}
	if patch.TargetText != nil {
		item.TargetText = domain.Normalize(*patch.TargetText)
	}
	if patch.OriginalLanguage != nil {
		item.OriginalLanguage = *patch.OriginalLanguage
	}
	if patch.PartOfSpeech != nil {
		item.PartOfSpeech = *patch.PartOfSpeech
	}
	if patch.ExampleSentences != nil {
		item.ExampleSentences = append([]domain.SentencePair(nil), (*patch.ExampleSentences)...)
	}
	if patch.ClearConjugations {
		item.Conjugations = nil
	} else if patch.Conjugations != nil {
		item.Conjugations = patch.Conjugations.Clone()
	}
	if patch.Hints != nil {
		item.Hints = append([]string(nil), (*patch.Hints)...)
	}
	if patch.Review != nil {
		item.Review = *patch.Review
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	if patch.Mastery != nil {
		item.Mastery = *patch.Mastery
		if patch.Mastery.LastReviewedAt != nil {
			last := *patch.Mastery.LastReviewedAt
			item.Mastery.LastReviewedAt = &last
		}
	}
	// Status goes last so archiving wins over a review flag in the same patch.
	if patch.Status != nil {
		if err := r.policy.Apply(item, *patch.Status); err != nil {
			return err
		}
	}
	return nil
}

// Update merges patch into the item with the given id and returns a copy of
// the result. It returns ErrItemNotFound for an unknown id and a
// *DuplicateItemError if new texts collide with another item.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch ItemPatch) (*domain.VocabularyItem, error) {
	return r.modify(ctx, id, func(item *domain.VocabularyItem) error {
		if err := r.applyPatch(item, patch); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
		}
		return nil
	})
}

// MasteryFunc computes an item's next mastery state from its current one.
type MasteryFunc func(current domain.Mastery) (domain.Mastery, error)

// UpdateMastery reads the item's mastery, passes it to fn and stores the
// result, all in one operation, so concurrent reviews of the same item are
// applied one after the other. An error from fn is returned unchanged and
// nothing is written.
func (r *Repository) UpdateMastery(ctx context.Context, id uuid.UUID, fn MasteryFunc) (*domain.VocabularyItem, error) {
	if fn == nil {
		return nil, errors.New("mastery function cannot be nil")
	}
	return r.modify(ctx, id, func(item *domain.VocabularyItem) error {
		next, err := fn(item.Mastery)
		if err != nil {
			return err
		}
		item.Mastery = next
		if next.LastReviewedAt != nil {
			last := *next.LastReviewedAt
			item.Mastery.LastReviewedAt = &last
		}
		return nil
	})
}

// modify applies change to a copy of the item with the given id, then
// validates, dedup-checks and persists it under the lock.
func (r *Repository) modify(
	ctx context.Context,
	id uuid.UUID,
	change func(item *domain.VocabularyItem) error,
) (*domain.VocabularyItem, error) {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	updated := r.items[idx].Clone()
	if err := change(updated); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	updated.UpdatedAt = r.now()
	if err := updated.Validate(); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	if conflict := findDuplicate(r.items, updated.SourceText, updated.TargetText, id); conflict != nil {
		r.mu.Unlock()
		return nil, conflict
	}

	next := make([]*domain.VocabularyItem, len(r.items))
	copy(next, r.items)
	next[idx] = updated
	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.items = next
	r.mu.Unlock()

	r.emit(ctx, events.ItemUpdated, id)
	return updated.Clone(), nil
}

// Delete removes the item with the given id. Deleting an unknown id changes
// nothing and returns ErrItemNotFound, so callers may treat it as idempotent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	next := make([]*domain.VocabularyItem, 0, len(r.items)-1)
	next = append(next, r.items[:idx]...)
	next = append(next, r.items[idx+1:]...)
	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.items = next
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "item deleted", slog.String("item_id", id.String()))
	r.emit(ctx, events.ItemDeleted, id)
	return nil
}

// Get returns a copy of the item with the given id.
func (r *Repository) Get(id uuid.UUID) (*domain.VocabularyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return r.items[idx].Clone(), nil
}

// Snapshot returns copies of all items in insertion order.
func (r *Repository) Snapshot() []*domain.VocabularyItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.VocabularyItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Clone())
	}
	return out
}

// Len returns the number of items.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
