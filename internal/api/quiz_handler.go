package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/quiz"
)

// QuizSession is the quiz state the handler drives. *quiz.Session implements it.
type QuizSession interface {
	Cursor() (quiz.Cursor, error)
	Answer(ctx context.Context, correct bool) (*domain.VocabularyItem, error)
	Skip() (*domain.VocabularyItem, error)
	Refresh()
}

// QuizHandler handles the interactive review session.
type QuizHandler struct {
	session QuizSession
	logger  *slog.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(session QuizSession, logger *slog.Logger) *QuizHandler {
	if session == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session cannot be nil for QuizHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QuizHandler{
		session: session,
		logger:  logger.With(slog.String("component", "quiz_handler")),
	}
}

func (h *QuizHandler) respondCurrent(w http.ResponseWriter, r *http.Request) {
	cursor, err := h.session.Cursor()
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuizResponse{
		Item:     itemToResponse(cursor.Item),
		Position: cursor.Position,
		Total:    cursor.Total,
	})
}

// GetCurrent handles GET /quiz/current
// The queue is recomputed first, so items that became due since the last
// request show up. It answers 204 when nothing is due.
func (h *QuizHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	h.session.Refresh()
	h.respondCurrent(w, r)
}

// Answer handles POST /quiz/answer
// It records the outcome for the current item and returns the next one.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	answered, err := h.session.Answer(r.Context(), *req.Correct)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("quiz answer recorded",
		slog.String("item_id", answered.ID.String()),
		slog.Bool("correct", *req.Correct))
	h.respondCurrent(w, r)
}

// Skip handles POST /quiz/skip
func (h *QuizHandler) Skip(w http.ResponseWriter, r *http.Request) {
	if _, err := h.session.Skip(); err != nil {
		HandleAPIError(w, r, err, "Failed to skip item")
		return
	}
	h.respondCurrent(w, r)
}
