package quiz

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
	"github.com/phrazzld/scry-lexicon/internal/events"
	"github.com/phrazzld/scry-lexicon/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

// repoReviewer applies srs outcomes through the repository, as the service does.
type repoReviewer struct {
	repo *store.Repository
	srs  srs.Service
	now  func() time.Time
}

func (r *repoReviewer) Review(ctx context.Context, id uuid.UUID, outcome srs.Outcome) (*domain.VocabularyItem, error) {
	now := r.now()
	return r.repo.UpdateMastery(ctx, id, func(m domain.Mastery) (domain.Mastery, error) {
		return r.srs.CalculateNextReview(m, outcome, now)
	})
}

type harness struct {
	repo    *store.Repository
	session *Session
	items   map[string]uuid.UUID
}

func newHarness(t *testing.T, words ...string) *harness {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return start }

	emitter := events.NewInMemoryEventEmitter(logger)
	repo, err := store.Open(ctx, store.NewMemoryBackend(nil),
		store.WithLogger(logger), store.WithEventEmitter(emitter), store.WithClock(clock))
	require.NoError(t, err)

	h := &harness{repo: repo, items: map[string]uuid.UUID{}}
	for _, w := range words {
		item, err := domain.NewVocabularyItem(domain.NewItemParams{SourceText: w, TargetText: w + "-en"}, start)
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, item))
		h.items[w] = item.ID
	}

	reviewer := &repoReviewer{repo: repo, srs: srs.NewDefaultService(), now: clock}
	h.session = NewSession(repo, reviewer, WithClock(clock), WithLogger(logger))
	emitter.RegisterHandler(h.session)
	return h
}

func (h *harness) current(t *testing.T) string {
	t.Helper()
	item, err := h.session.Current()
	require.NoError(t, err)
	return item.SourceText
}

func TestSessionAnswerCorrectRemovesItem(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")
	ctx := context.Background()

	assert.Equal(t, 3, h.session.Len())
	assert.Equal(t, "uno", h.current(t))

	updated, err := h.session.Answer(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Mastery.ReviewCount)
	assert.Equal(t, 2, h.session.Len())
	assert.Equal(t, "dos", h.current(t))
}

func TestSessionAnswerIncorrectKeepsItemQueued(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos")
	ctx := context.Background()

	_, err := h.session.Answer(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, h.session.Len(), "an incorrect answer leaves the item due")
	assert.Equal(t, "dos", h.current(t))

	_, err = h.session.Answer(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "uno", h.current(t), "position wraps to the start")
}

func TestSessionWrapsWhenLastItemLeaves(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")
	ctx := context.Background()

	_, err := h.session.Skip()
	require.NoError(t, err)
	_, err = h.session.Skip()
	require.NoError(t, err)
	assert.Equal(t, "tres", h.current(t))

	_, err = h.session.Answer(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, h.session.Position())
	assert.Equal(t, "uno", h.current(t))
}

func TestSessionRecomputesOnStatusChange(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")
	ctx := context.Background()

	_, err := h.session.Skip()
	require.NoError(t, err)
	_, err = h.session.Skip()
	require.NoError(t, err)
	require.Equal(t, 2, h.session.Position())

	checkLater := domain.StatusCheckLater
	_, err = h.repo.Update(ctx, h.items["dos"], store.ItemPatch{Status: &checkLater})
	require.NoError(t, err)

	assert.Equal(t, 2, h.session.Len())
	assert.Equal(t, 0, h.session.Position(), "out-of-range position wraps to 0")
	for _, item := range h.session.Queue() {
		assert.Equal(t, domain.StatusReviewNow, item.Status)
	}

	review := false
	_, err = h.repo.Update(ctx, h.items["uno"], store.ItemPatch{Review: &review})
	require.NoError(t, err)
	assert.Equal(t, "tres", h.current(t))
}

func TestSessionSkipAfterCurrentDeleted(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")

	require.NoError(t, h.repo.Delete(context.Background(), h.items["uno"]))

	next, err := h.session.Skip()
	require.NoError(t, err)
	assert.Equal(t, "tres", next.SourceText)
}

func TestSessionEmptyQueue(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.session.Current()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = h.session.Answer(context.Background(), true)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = h.session.Skip()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Zero(t, h.session.Len())
}

func TestSessionCursor(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")

	_, err := h.session.Skip()
	require.NoError(t, err)

	cursor, err := h.session.Cursor()
	require.NoError(t, err)
	assert.Equal(t, "dos", cursor.Item.SourceText)
	assert.Equal(t, 1, cursor.Position)
	assert.Equal(t, 3, cursor.Total)

	empty := newHarness(t)
	_, err = empty.session.Cursor()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestSessionCursorStaysConsistentWhileQueueChanges(t *testing.T) {
	t.Parallel()
	h := newHarness(t, "uno", "dos", "tres")
	ctx := context.Background()

	_, err := h.session.Skip()
	require.NoError(t, err)
	_, err = h.session.Skip()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			review := i%2 == 1
			_, err := h.repo.Update(ctx, h.items["dos"], store.ItemPatch{Review: &review})
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 200; i++ {
		cursor, err := h.session.Cursor()
		require.NoError(t, err)
		require.Less(t, cursor.Position, cursor.Total)
		require.NotNil(t, cursor.Item)
	}
	wg.Wait()
}
