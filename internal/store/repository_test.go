package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestRepo(t *testing.T, backend Backend, opts ...Option) *Repository {
	t.Helper()
	opts = append([]Option{
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	repo, err := Open(context.Background(), backend, opts...)
	require.NoError(t, err)
	return repo
}

func newItem(t *testing.T, source, target string) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(domain.NewItemParams{SourceText: source, TargetText: target}, testNow)
	require.NoError(t, err)
	return item
}

// failingBackend fails every Save after the first failAfter calls.
type failingBackend struct {
	MemoryBackend
	failAfter int
	calls     int
}

func (b *failingBackend) Save(ctx context.Context, payload []byte) error {
	b.calls++
	if b.calls > b.failAfter {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Save(ctx, payload)
}

func TestRepositoryAddRejectsDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	repo := openTestRepo(t, backend)

	require.NoError(t, repo.Add(ctx, newItem(t, "gato", "cat")))
	savesBefore := backend.Saves()

	testCases := []struct {
		name   string
		source string
		target string
		field  string
	}{
		{"same source different case", "Gato", "kitty", "source_text"},
		{"same source with whitespace", " gato  ", "feline", "source_text"},
		{"same target", "minino", "CAT", "target_text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Add(ctx, newItem(t, tc.source, tc.target))
			require.Error(t, err)
			assert.True(t, IsDuplicateError(err))

			var dup *DuplicateItemError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tc.field, dup.Field)
		})
	}

	assert.Equal(t, 1, repo.Len(), "rejected inserts make no mutation")
	assert.Equal(t, savesBefore, backend.Saves(), "rejected inserts are not persisted")

	require.NoError(t, repo.Add(ctx, newItem(t, "perro", "dog")))
	assert.Equal(t, 2, repo.Len())
}

func TestRepositoryAddCaseVariantOfSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))

	require.NoError(t, repo.Add(ctx, newItem(t, "perro", "dog")))
	err := repo.Add(ctx, newItem(t, "Perro ", "hound"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRepositoryPersistsAndReloads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	repo := openTestRepo(t, backend)

	first := newItem(t, "perro", "dog")
	second := newItem(t, "gato", "cat")
	require.NoError(t, repo.Add(ctx, first))
	require.NoError(t, repo.Add(ctx, second))

	reopened := openTestRepo(t, backend)
	snapshot := reopened.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, first.ID, snapshot[0].ID, "insertion order is preserved")
	assert.Equal(t, second.ID, snapshot[1].ID)
	assert.Equal(t, first, snapshot[0])
}

func TestRepositoryOpenResetsCorruptPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend([]byte(`{"version":1,"items":[{"id":"broken"`))

	repo := openTestRepo(t, backend)
	assert.Zero(t, repo.Len())

	require.NoError(t, repo.Add(ctx, newItem(t, "perro", "dog")))
	reopened := openTestRepo(t, backend)
	assert.Equal(t, 1, reopened.Len(), "the next write replaces the corrupt payload")
}

func TestRepositoryOpenPropagatesBackendErrors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), loadErrorBackend{}, WithLogger(discardLogger()))
	require.Error(t, err)
	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "load", storeErr.Operation)
}

type loadErrorBackend struct{}

func (loadErrorBackend) Load(ctx context.Context) ([]byte, error) {
	return nil, errors.New("permission denied")
}

func (loadErrorBackend) Save(ctx context.Context, payload []byte) error { return nil }

func TestRepositoryUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))

	item := newItem(t, "perro", "dog")
	other := newItem(t, "gato", "cat")
	require.NoError(t, repo.Add(ctx, item))
	require.NoError(t, repo.Add(ctx, other))

	t.Run("renormalizes texts", func(t *testing.T) {
		source := "  Perrito "
		updated, err := repo.Update(ctx, item.ID, ItemPatch{SourceText: &source})
		require.NoError(t, err)
		assert.Equal(t, "perrito", updated.SourceText)
		assert.Equal(t, "dog", updated.TargetText)
		assert.True(t, updated.UpdatedAt.Equal(testNow))
	})

	t.Run("rejects texts that collide with another item", func(t *testing.T) {
		target := "Cat"
		_, err := repo.Update(ctx, item.ID, ItemPatch{TargetText: &target})
		assert.ErrorIs(t, err, ErrDuplicate)

		stored, err := repo.Get(item.ID)
		require.NoError(t, err)
		assert.Equal(t, "dog", stored.TargetText)
	})

	t.Run("keeping its own texts is not a duplicate", func(t *testing.T) {
		target := "DOG"
		_, err := repo.Update(ctx, item.ID, ItemPatch{TargetText: &target})
		assert.NoError(t, err)
	})

	t.Run("archiving forces review off", func(t *testing.T) {
		archived := domain.StatusArchived
		review := true
		updated, err := repo.Update(ctx, other.ID, ItemPatch{Status: &archived, Review: &review})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusArchived, updated.Status)
		assert.False(t, updated.Review)
	})

	t.Run("unknown id", func(t *testing.T) {
		review := false
		_, err := repo.Update(ctx, uuid.New(), ItemPatch{Review: &review})
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		bad := domain.Status("gone")
		_, err := repo.Update(ctx, item.ID, ItemPatch{Status: &bad})
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})

	t.Run("too many hints", func(t *testing.T) {
		hints := []string{"a", "b", "c"}
		_, err := repo.Update(ctx, item.ID, ItemPatch{Hints: &hints})
		assert.ErrorIs(t, err, ErrInvalidEntity)
	})

	t.Run("conjugation table set and cleared", func(t *testing.T) {
		table := &domain.ConjugationTable{Forms: map[string]map[string]string{"present": {"yo": "ladro"}}}
		updated, err := repo.Update(ctx, item.ID, ItemPatch{Conjugations: table})
		require.NoError(t, err)
		assert.True(t, updated.IsVerb())

		updated, err = repo.Update(ctx, item.ID, ItemPatch{ClearConjugations: true})
		require.NoError(t, err)
		assert.False(t, updated.IsVerb())
	})
}

func TestRepositoryRestorePolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil),
		WithStatusPolicy(domain.StatusPolicy{RestoreReviewOnUnarchive: true}))

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	archived, reviewNow := domain.StatusArchived, domain.StatusReviewNow
	_, err := repo.Update(ctx, item.ID, ItemPatch{Status: &archived})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, item.ID, ItemPatch{Status: &reviewNow})
	require.NoError(t, err)
	assert.True(t, updated.Review)
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	repo := openTestRepo(t, backend)

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.Zero(t, repo.Len())

	saves := backend.Saves()
	err := repo.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, saves, backend.Saves(), "deleting an unknown id writes nothing")

	// A deleted item's texts are free again.
	require.NoError(t, repo.Add(ctx, newItem(t, "perro", "dog")))
}

func TestRepositoryFailedWriteLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := &failingBackend{failAfter: 1}
	repo := openTestRepo(t, backend)

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	err := repo.Add(ctx, newItem(t, "gato", "cat"))
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, 1, repo.Len())

	review := false
	_, err = repo.Update(ctx, item.ID, ItemPatch{Review: &review})
	require.Error(t, err)
	stored, err := repo.Get(item.ID)
	require.NoError(t, err)
	assert.True(t, stored.Review)

	require.Error(t, repo.Delete(ctx, item.ID))
	assert.Equal(t, 1, repo.Len())
}

func TestRepositoryReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	item.SourceText = "mutated after add"
	snapshot := repo.Snapshot()
	snapshot[0].Review = false
	got, err := repo.Get(item.ID)
	require.NoError(t, err)
	got.Status = domain.StatusArchived

	stored, err := repo.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "perro", stored.SourceText)
	assert.True(t, stored.Review)
	assert.Equal(t, domain.StatusReviewNow, stored.Status)
}

func TestRepositoryEmitsEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	var received []events.ItemEventType
	emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, event *events.ItemEvent) error {
		received = append(received, event.Type)
		return nil
	}))

	repo := openTestRepo(t, NewMemoryBackend(nil), WithEventEmitter(emitter))
	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))
	_ = repo.Add(ctx, newItem(t, "perro", "hound")) // duplicate, no event
	active := false
	_, err := repo.Update(ctx, item.ID, ItemPatch{IsActive: &active})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, item.ID))

	assert.Equal(t, []events.ItemEventType{events.ItemCreated, events.ItemUpdated, events.ItemDeleted}, received)
}

func TestRepositoryMasteryPatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	reviewed := testNow.Add(time.Hour)
	mastery := domain.Mastery{
		Level:          domain.LevelReviewing,
		ReviewCount:    1,
		Streak:         1,
		LastReviewedAt: &reviewed,
		NextReviewAt:   reviewed.AddDate(0, 0, 2),
	}
	updated, err := repo.Update(ctx, item.ID, ItemPatch{Mastery: &mastery})
	require.NoError(t, err)

	reviewed = reviewed.Add(time.Hour) // the repository keeps its own copy
	assert.Equal(t, 1, updated.Mastery.ReviewCount)
	assert.True(t, updated.Mastery.LastReviewedAt.Equal(testNow.Add(time.Hour)))
}

func TestRepositoryAddReportsDuplicateBeforeInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))
	require.NoError(t, repo.Add(ctx, newItem(t, "gato", "cat")))

	incomplete := newItem(t, "Gato", "kitty")
	incomplete.TargetText = ""
	err := repo.Add(ctx, incomplete)

	var dup *DuplicateItemError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "source_text", dup.Field)

	fresh := newItem(t, "perro", "dog")
	fresh.TargetText = "  "
	assert.ErrorIs(t, repo.Add(ctx, fresh), ErrInvalidEntity)
	assert.Equal(t, 1, repo.Len())
}

func TestRepositoryUpdateMastery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	repo := openTestRepo(t, backend)

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	t.Run("applies the computed state", func(t *testing.T) {
		updated, err := repo.UpdateMastery(ctx, item.ID, func(m domain.Mastery) (domain.Mastery, error) {
			m.ReviewCount++
			m.Streak++
			return m, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Mastery.ReviewCount)
		assert.Equal(t, testNow, updated.UpdatedAt)
	})

	t.Run("function error writes nothing", func(t *testing.T) {
		saves := backend.Saves()
		boom := errors.New("bad outcome")
		_, err := repo.UpdateMastery(ctx, item.ID, func(domain.Mastery) (domain.Mastery, error) {
			return domain.Mastery{}, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, saves, backend.Saves())

		stored, err := repo.Get(item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Mastery.ReviewCount)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.UpdateMastery(ctx, uuid.New(), func(m domain.Mastery) (domain.Mastery, error) { return m, nil })
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestRepositoryUpdateMasteryIsSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestRepo(t, NewMemoryBackend(nil))

	item := newItem(t, "perro", "dog")
	require.NoError(t, repo.Add(ctx, item))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateMastery(ctx, item.ID, func(m domain.Mastery) (domain.Mastery, error) {
				time.Sleep(time.Millisecond)
				m.ReviewCount++
				return m, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.Get(item.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, stored.Mastery.ReviewCount, "no increment is lost")
}
