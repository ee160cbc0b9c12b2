package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-lexicon/internal/events"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/mocks"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/quiz"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
	"github.com/phrazzld/scry-lexicon/internal/store"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	router  http.Handler
	repo    *store.Repository
	service vocabulary.Service
	session *quiz.Session
}

func newTestServer(t *testing.T, generator generation.Generator) *testServer {
	t.Helper()
	ctx := context.Background()
	log, _ := logger.NewTestLogger()
	clock := func() time.Time { return testNow }

	emitter := events.NewInMemoryEventEmitter(log)
	repo, err := store.Open(ctx, store.NewMemoryBackend(nil),
		store.WithLogger(log),
		store.WithClock(clock),
		store.WithEventEmitter(emitter))
	require.NoError(t, err)

	svc, err := vocabulary.NewService(repo, generator, log,
		vocabulary.WithClock(clock),
		vocabulary.WithPacing(0, func(time.Duration) {}))
	require.NoError(t, err)

	session := quiz.NewSession(repo, svc, quiz.WithClock(clock), quiz.WithLogger(log))
	emitter.RegisterHandler(session)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, NewItemHandler(svc, log), NewQuizHandler(session, log))
	})

	return &testServer{router: r, repo: repo, service: svc, session: session}
}

func newDictionaryServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServer(t, mocks.NewDictionaryGenerator(map[string]string{
		"gato":   "cat",
		"perro":  "dog",
		"hablar": "to speak",
	}))
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// create adds an item through the API and returns it.
func (s *testServer) create(t *testing.T, headword string) ItemResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/items", CreateItemRequest{Headword: headword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ItemResponse](t, rec)
}
