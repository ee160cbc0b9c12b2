package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizFlow(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)

	rec := s.do(t, http.MethodGet, "/api/quiz/current", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "empty queue answers no content")

	s.create(t, "gato")
	s.create(t, "perro")
	s.create(t, "hablar")

	rec = s.do(t, http.MethodGet, "/api/quiz/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[QuizResponse](t, rec)
	assert.Equal(t, "gato", current.Item.SourceText)
	assert.Equal(t, 0, current.Position)
	assert.Equal(t, 3, current.Total)

	correct := true
	rec = s.do(t, http.MethodPost, "/api/quiz/answer", AnswerRequest{Correct: &correct})
	require.Equal(t, http.StatusOK, rec.Code)
	current = decode[QuizResponse](t, rec)
	assert.Equal(t, "perro", current.Item.SourceText, "a correct answer removes gato from the queue")
	assert.Equal(t, 2, current.Total)

	incorrect := false
	rec = s.do(t, http.MethodPost, "/api/quiz/answer", AnswerRequest{Correct: &incorrect})
	require.Equal(t, http.StatusOK, rec.Code)
	current = decode[QuizResponse](t, rec)
	assert.Equal(t, "hablar", current.Item.SourceText, "perro stays due and the session moves past it")
	assert.Equal(t, 2, current.Total)

	rec = s.do(t, http.MethodPost, "/api/quiz/skip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current = decode[QuizResponse](t, rec)
	assert.Equal(t, "perro", current.Item.SourceText, "skipping past the end wraps to the start")
	assert.Equal(t, 0, current.Position)

	rec = s.do(t, http.MethodPost, "/api/quiz/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuizSeesStatusChanges(t *testing.T) {
	t.Parallel()
	s := newDictionaryServer(t)
	gato := s.create(t, "gato")
	s.create(t, "perro")

	rec := s.do(t, http.MethodPut, "/api/items/"+gato.ID+"/status", StatusRequest{Status: "check_later"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/quiz/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[QuizResponse](t, rec)
	assert.Equal(t, "perro", current.Item.SourceText)
	assert.Equal(t, 1, current.Total)
}
