package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/selector"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// ItemHandler handles vocabulary item HTTP requests.
type ItemHandler struct {
	service vocabulary.Service
	logger  *slog.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service vocabulary.Service, logger *slog.Logger) *ItemHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for ItemHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ItemHandler{
		service: service,
		logger:  logger.With(slog.String("component", "item_handler")),
	}
}

// CreateItem handles POST /items
// It generates the item's content from a headword.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateItemRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := h.service.Create(r.Context(), req.Headword)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// CreateManualItem handles POST /items/manual
func (h *ItemHandler) CreateManualItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ManualItemRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := h.service.Add(r.Context(), req.Params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// CreateBatch handles POST /items/batch
// Per-headword failures are reported in the body; the request itself succeeds.
func (h *ItemHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req BatchRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result := h.service.AddBatch(r.Context(), req.Headwords)
	shared.RespondWithJSON(w, r, http.StatusOK, batchToResponse(result))
}

// ListItems handles GET /items?view=&review_only=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	view, err := selector.ParseView(query.Get("view"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	filter := selector.Filter{View: view}
	if raw := query.Get("review_only"); raw != "" {
		filter.ReviewOnly, err = strconv.ParseBool(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid review_only value")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemsToResponse(h.service.List(r.Context(), filter)))
}

// GetItem handles GET /items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// EditItem handles PATCH /items/{id}
func (h *ItemHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req EditItemRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	patch := store.ItemPatch{
		SourceText:        req.SourceText,
		TargetText:        req.TargetText,
		PartOfSpeech:      req.PartOfSpeech,
		ExampleSentences:  req.ExampleSentences,
		Conjugations:      req.Conjugations,
		ClearConjugations: req.ClearConjugations,
		Hints:             req.Hints,
	}
	if req.OriginalLanguage != nil {
		lang := domain.Language(*req.OriginalLanguage)
		patch.OriginalLanguage = &lang
	}

	item, err := h.service.Edit(r.Context(), id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to edit item")
		return
	}

	log.Debug("item edited", slog.String("item_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /items/{id}/status
func (h *ItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := h.service.SetStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// SetReview handles PUT /items/{id}/review
func (h *ItemHandler) SetReview(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.SetReview)
}

// SetActive handles PUT /items/{id}/active
func (h *ItemHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.SetActive)
}

func (h *ItemHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	set func(ctx context.Context, id uuid.UUID, value bool) (*domain.VocabularyItem, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ToggleRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := set(r.Context(), id, *req.Value)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// AnswerItem handles POST /items/{id}/answer
// It records a review outcome for a specific item outside the quiz session.
func (h *ItemHandler) AnswerItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := getPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := h.service.Review(r.Context(), id, srs.OutcomeFromBool(*req.Correct))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// GetQueue handles GET /quiz/queue
func (h *ItemHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, itemsToResponse(h.service.DueQueue(r.Context())))
}

// BackfillHints handles POST /jobs/backfill-hints
func (h *ItemHandler) BackfillHints(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.BackfillHints(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to backfill hints")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BackfillResponse{
		Candidates: result.Candidates,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
	})
}
