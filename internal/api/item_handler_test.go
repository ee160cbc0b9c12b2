package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem(t *testing.T) {
	t.Parallel()

	t.Run("creates from headword", func(t *testing.T) {
		s := newDictionaryServer(t)

		item := s.create(t, "Hablar")
		assert.Equal(t, "hablar", item.SourceText)
		assert.Equal(t, "to speak", item.TargetText)
		assert.Equal(t, "review_now", item.Status)
		assert.True(t, item.Review)
		assert.True(t, item.IsActive)
		assert.Equal(t, "reviewing", item.Mastery.Level)
		assert.NotNil(t, item.Conjugations)
		assert.Equal(t, []string{"hablar-hint"}, item.Hints)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		s := newDictionaryServer(t)
		s.create(t, "gato")

		rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{Headword: " GATO"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decode[shared.ErrorResponse](t, rec)
		assert.Equal(t, "An item with this source text already exists", resp.Error)
		assert.Equal(t, 1, s.repo.Len())
	})

	t.Run("generator failure is a bad gateway", func(t *testing.T) {
		s := newTestServer(t, mocks.NewMockGeneratorWithError(generation.ErrGenerationFailed))

		rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{Headword: "gato"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Content generation failed", decode[shared.ErrorResponse](t, rec).Error)
		assert.Equal(t, 0, s.repo.Len())
	})

	t.Run("blocked content", func(t *testing.T) {
		s := newTestServer(t, mocks.NewMockGeneratorWithError(generation.ErrContentBlocked))

		rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{Headword: "gato"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("no generator configured", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{Headword: "gato"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		s := newDictionaryServer(t)

		rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid headword: required field", decode[shared.ErrorResponse](t, rec).Error)

		rec = s.do(t, http.MethodPost, "/api/items", `{"headword":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", decode[shared.ErrorResponse](t, rec).Error)

		rec = s.do(t, http.MethodPost, "/api/items", `{"headword":"gato","extra":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateManualItem(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/items/manual", map[string]interface{}{
		"source_text":       " Perro",
		"target_text":       "Dog",
		"part_of_speech":    "noun",
		"example_sentences": []map[string]string{{"target": "El perro.", "native": "The dog."}},
		"hints":             []string{"pear-oh"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[ItemResponse](t, rec)
	assert.Equal(t, "perro", item.SourceText)
	assert.Equal(t, "target", item.OriginalLanguage)
	assert.Len(t, item.ExampleSentences, 1)

	rec = s.do(t, http.MethodPost, "/api/items/manual", map[string]interface{}{
		"source_text": "Perro ",
		"target_text": "hound",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/items/manual", map[string]interface{}{
		"source_text": "gato",
		"target_text": "cat",
		"hints":       []string{"a", "b", "c"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBatch(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	s.create(t, "gato")

	rec := s.do(t, http.MethodPost, "/api/items/batch", BatchRequest{Headwords: []string{"perro", "gato", "nada"}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchResponse](t, rec)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Duplicates)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Entries, 3)
	assert.NotNil(t, resp.Entries[0].Item)
	assert.Equal(t, "duplicate", resp.Entries[1].Outcome)
	assert.Equal(t, "Content generation failed", resp.Entries[2].Error)

	rec = s.do(t, http.MethodPost, "/api/items/batch", BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListItems(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	gato := s.create(t, "gato")
	s.create(t, "perro")

	rec := s.do(t, http.MethodPut, "/api/items/"+gato.ID+"/status", StatusRequest{Status: "archived"})
	require.Equal(t, http.StatusOK, rec.Code)

	testCases := []struct {
		query string
		want  int
		code  int
	}{
		{"", 2, http.StatusOK},
		{"?view=archived", 1, http.StatusOK},
		{"?view=review_now", 1, http.StatusOK},
		{"?review_only=true", 1, http.StatusOK},
		{"?view=archived&review_only=true", 0, http.StatusOK},
		{"?view=nope", 0, http.StatusBadRequest},
		{"?review_only=maybe", 0, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/items"+tc.query, nil)
			require.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, tc.want, decode[ItemListResponse](t, rec).Count)
			}
		})
	}
}

func TestGetEditDeleteItem(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	gato := s.create(t, "gato")
	s.create(t, "perro")

	rec := s.do(t, http.MethodGet, "/api/items/"+gato.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gato", decode[ItemResponse](t, rec).SourceText)

	rec = s.do(t, http.MethodGet, "/api/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/items/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found", decode[shared.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPatch, "/api/items/"+gato.ID, map[string]interface{}{"target_text": " Kitty "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kitty", decode[ItemResponse](t, rec).TargetText)

	rec = s.do(t, http.MethodPatch, "/api/items/"+gato.ID, map[string]interface{}{"target_text": "DOG"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "An item with this target text already exists", decode[shared.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodDelete, "/api/items/"+gato.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/items/"+gato.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusAndToggles(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	gato := s.create(t, "gato")
	path := "/api/items/" + gato.ID

	rec := s.do(t, http.MethodPut, path+"/status", StatusRequest{Status: "archived"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ItemResponse](t, rec).Review, "archiving turns review off")

	rec = s.do(t, http.MethodPut, path+"/status", StatusRequest{Status: "review_now"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ItemResponse](t, rec).Review, "unarchiving leaves review off")

	on := true
	rec = s.do(t, http.MethodPut, path+"/review", ToggleRequest{Value: &on})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[ItemResponse](t, rec).Review)

	off := false
	rec = s.do(t, http.MethodPut, path+"/active", ToggleRequest{Value: &off})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ItemResponse](t, rec).IsActive)

	rec = s.do(t, http.MethodPut, path+"/active", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path+"/status", StatusRequest{Status: "deleted"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerItemAndQueue(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	gato := s.create(t, "gato")
	s.create(t, "perro")

	rec := s.do(t, http.MethodGet, "/api/quiz/queue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[ItemListResponse](t, rec).Count)

	correct := true
	rec = s.do(t, http.MethodPost, "/api/items/"+gato.ID+"/answer", AnswerRequest{Correct: &correct})
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[ItemResponse](t, rec)
	assert.Equal(t, 1, item.Mastery.ReviewCount)
	assert.Equal(t, testNow.AddDate(0, 0, 2), item.Mastery.NextReviewAt.UTC())

	rec = s.do(t, http.MethodGet, "/api/quiz/queue", nil)
	queue := decode[ItemListResponse](t, rec)
	require.Equal(t, 1, queue.Count)
	assert.Equal(t, "perro", queue.Items[0].SourceText)
}

func TestBackfillHintsEndpoint(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)

	rec := s.do(t, http.MethodPost, "/api/items/manual", map[string]interface{}{
		"source_text": "perro",
		"target_text": "dog",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/jobs/backfill-hints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BackfillResponse](t, rec)
	assert.Equal(t, 1, resp.Candidates)
	assert.Equal(t, 1, resp.Updated)

	noGen := newTestServer(t, nil)
	rec = noGen.do(t, http.MethodPost, "/api/jobs/backfill-hints", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
