package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-lexicon/internal/api/shared"
	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/quiz"
	"github.com/phrazzld/scry-lexicon/internal/selector"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, vocabulary.ErrBackfillInProgress):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, selector.ErrInvalidView),
		errors.Is(err, generation.ErrEmptyHeadword):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	case errors.Is(err, vocabulary.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, quiz.ErrQueueEmpty):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that leaks no
// internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return duplicateMessage(err)
	case errors.Is(err, vocabulary.ErrBackfillInProgress):
		return "Hint backfill already in progress"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid status"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid item data"
	case errors.Is(err, srs.ErrInvalidOutcome):
		return "Invalid answer"
	case errors.Is(err, selector.ErrInvalidView):
		return "Invalid view"
	case errors.Is(err, generation.ErrEmptyHeadword):
		return "Headword is required"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Generated content was blocked"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Content generation failed"
	case errors.Is(err, vocabulary.ErrGeneratorUnavailable):
		return "Content generation is not configured"

	default:
		return "An unexpected error occurred"
	}
}

// duplicateMessage names the colliding field when the error says which one.
func duplicateMessage(err error) string {
	var dup *store.DuplicateItemError
	if errors.As(err, &dup) {
		switch dup.Field {
		case "source_text":
			return "An item with this source text already exists"
		case "target_text":
			return "An item with this target text already exists"
		}
	}
	return "Item already exists"
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid entry"
	default:
		return "validation failed"
	}
}
