// Package quiz keeps the state of an interactive review session: the current
// due-queue and the learner's position in it.
package quiz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
	"github.com/phrazzld/scry-lexicon/internal/events"
	"github.com/phrazzld/scry-lexicon/internal/selector"
)

// ErrQueueEmpty is returned when there is nothing due for review.
var ErrQueueEmpty = errors.New("no items due for review")

// Snapshotter provides the items the queue is computed from.
type Snapshotter interface {
	Snapshot() []*domain.VocabularyItem
}

// Reviewer records a review outcome for an item.
type Reviewer interface {
	Review(ctx context.Context, id uuid.UUID, outcome srs.Outcome) (*domain.VocabularyItem, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used to decide due-ness.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOrder sets the due-queue order.
func WithOrder(order selector.QueueOrder) Option {
	return func(s *Session) {
		s.order = order
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is a review session over the due-queue.
//
// The queue is recomputed from a fresh snapshot whenever an item event
// arrives and whenever the learner moves. The position wraps to the start
// when it falls off the end of the queue.
type Session struct {
	mu       sync.Mutex
	source   Snapshotter
	reviewer Reviewer
	order    selector.QueueOrder
	now      func() time.Time
	logger   *slog.Logger

	queue    []*domain.VocabularyItem
	position int
}

var _ events.EventHandler = (*Session)(nil)

// NewSession creates a session and computes its first queue.
func NewSession(source Snapshotter, reviewer Reviewer, opts ...Option) *Session {
	s := &Session{
		source:   source,
		reviewer: reviewer,
		order:    selector.OrderInsertion,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "quiz_session"))

	s.mu.Lock()
	s.recomputeLocked()
	s.mu.Unlock()
	return s
}

func (s *Session) recomputeLocked() {
	s.queue = selector.DueQueue(s.source.Snapshot(), s.now(), s.order)
	s.position = selector.ClampPosition(s.position, len(s.queue))
}

func (s *Session) indexLocked(id uuid.UUID) int {
	for i, item := range s.queue {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// HandleEvent recomputes the queue after any item change.
func (s *Session) HandleEvent(ctx context.Context, event *events.ItemEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recomputeLocked()
	s.logger.DebugContext(ctx, "queue recomputed",
		slog.String("event_type", string(event.Type)),
		slog.Int("queue_length", len(s.queue)),
		slog.Int("position", s.position))
	return nil
}

// Refresh recomputes the queue, for example after time has passed.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
}

// Len returns the current queue length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Position returns the current position in the queue.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Queue returns copies of the queued items in queue order.
func (s *Session) Queue() []*domain.VocabularyItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.VocabularyItem, 0, len(s.queue))
	for _, item := range s.queue {
		out = append(out, item.Clone())
	}
	return out
}

// Current returns a copy of the item at the current position.
func (s *Session) Current() (*domain.VocabularyItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, ErrQueueEmpty
	}
	return s.queue[s.position].Clone(), nil
}

// Cursor is the session's current item together with the queue position
// and length it was read at.
type Cursor struct {
	Item     *domain.VocabularyItem
	Position int
	Total    int
}

// Cursor returns the current item, position and queue length read under a
// single lock, so all three describe the same queue.
func (s *Session) Cursor() (Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return Cursor{}, ErrQueueEmpty
	}
	return Cursor{
		Item:     s.queue[s.position].Clone(),
		Position: s.position,
		Total:    len(s.queue),
	}, nil
}

// Answer records the outcome for the current item and moves on. An item
// answered incorrectly stays due and comes around again after the items
// behind it.
func (s *Session) Answer(ctx context.Context, correct bool) (*domain.VocabularyItem, error) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	id := s.queue[s.position].ID
	s.mu.Unlock()

	// The reviewer's write emits an event that re-enters HandleEvent,
	// so the lock is not held across the call.
	updated, err := s.reviewer.Review(ctx, id, srs.OutcomeFromBool(correct))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
	if idx := s.indexLocked(id); idx >= 0 {
		s.position = selector.ClampPosition(idx+1, len(s.queue))
	}
	return updated, nil
}

// Skip moves to the next item without recording an outcome.
func (s *Session) Skip() (*domain.VocabularyItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current uuid.UUID
	if len(s.queue) > 0 {
		current = s.queue[s.position].ID
	}

	s.recomputeLocked()
	if len(s.queue) == 0 {
		return nil, ErrQueueEmpty
	}

	// If the current item left the queue, its successor already sits at position.
	next := s.position
	if idx := s.indexLocked(current); idx >= 0 {
		next = idx + 1
	}
	s.position = selector.ClampPosition(next, len(s.queue))
	return s.queue[s.position].Clone(), nil
}
