package api

import (
	"time"

	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
)

// CreateItemRequest asks the Content Generator to build an item for a headword.
type CreateItemRequest struct {
	Headword string `json:"headword" validate:"required,max=200"`
}

// ManualItemRequest carries caller-supplied content for a new item.
type ManualItemRequest struct {
	SourceText       string                   `json:"source_text"       validate:"required,max=200"`
	TargetText       string                   `json:"target_text"       validate:"required,max=200"`
	OriginalLanguage string                   `json:"original_language" validate:"omitempty,oneof=native target"`
	PartOfSpeech     string                   `json:"part_of_speech"    validate:"max=50"`
	ExampleSentences []domain.SentencePair    `json:"example_sentences"`
	Conjugations     *domain.ConjugationTable `json:"conjugation_table"`
	Hints            []string                 `json:"hints"             validate:"max=2"`
}

// Params converts the request into domain parameters.
func (r ManualItemRequest) Params() domain.NewItemParams {
	return domain.NewItemParams{
		SourceText:       r.SourceText,
		TargetText:       r.TargetText,
		OriginalLanguage: domain.Language(r.OriginalLanguage),
		PartOfSpeech:     r.PartOfSpeech,
		ExampleSentences: r.ExampleSentences,
		Conjugations:     r.Conjugations,
		Hints:            r.Hints,
	}
}

// BatchRequest lists headwords to create in one call.
type BatchRequest struct {
	Headwords []string `json:"headwords" validate:"required,min=1,max=500"`
}

// EditItemRequest changes item content. Absent fields are left alone; a
// conjugation_table of null together with clear_conjugations removes it.
type EditItemRequest struct {
	SourceText        *string                  `json:"source_text"       validate:"omitempty,max=200"`
	TargetText        *string                  `json:"target_text"       validate:"omitempty,max=200"`
	OriginalLanguage  *string                  `json:"original_language" validate:"omitempty,oneof=native target"`
	PartOfSpeech      *string                  `json:"part_of_speech"    validate:"omitempty,max=50"`
	ExampleSentences  *[]domain.SentencePair   `json:"example_sentences"`
	Conjugations      *domain.ConjugationTable `json:"conjugation_table"`
	ClearConjugations bool                     `json:"clear_conjugations"`
	Hints             *[]string                `json:"hints"`
}

// StatusRequest sets an item's workflow status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=review_now check_later archived"`
}

// ToggleRequest sets a boolean flag. A pointer tells false from absent.
type ToggleRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// AnswerRequest reports a review outcome.
type AnswerRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// MasteryResponse is the spaced-repetition state of an item.
type MasteryResponse struct {
	Level          string     `json:"level"`
	ReviewCount    int        `json:"review_count"`
	Streak         int        `json:"streak"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `json:"next_review_at"`
}

// ItemResponse is the API representation of a vocabulary item.
type ItemResponse struct {
	ID               string                   `json:"id"`
	SourceText       string                   `json:"source_text"`
	TargetText       string                   `json:"target_text"`
	OriginalLanguage string                   `json:"original_language"`
	PartOfSpeech     string                   `json:"part_of_speech"`
	ExampleSentences []domain.SentencePair    `json:"example_sentences"`
	Conjugations     *domain.ConjugationTable `json:"conjugation_table,omitempty"`
	Hints            []string                 `json:"hints"`
	Review           bool                     `json:"review"`
	Status           string                   `json:"status"`
	IsActive         bool                     `json:"is_active"`
	Mastery          MasteryResponse          `json:"mastery"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

// BatchEntryResponse reports the outcome for one headword of a batch.
type BatchEntryResponse struct {
	Headword string        `json:"headword"`
	Outcome  string        `json:"outcome"`
	Item     *ItemResponse `json:"item,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BatchResponse reports a whole batch.
type BatchResponse struct {
	Entries    []BatchEntryResponse `json:"entries"`
	Created    int                  `json:"created"`
	Duplicates int                  `json:"duplicates"`
	Failed     int                  `json:"failed"`
}

// QuizResponse is the current quiz position.
type QuizResponse struct {
	Item     ItemResponse `json:"item"`
	Position int          `json:"position"`
	Total    int          `json:"total"`
}

// BackfillResponse summarizes a hint backfill run.
type BackfillResponse struct {
	Candidates int `json:"candidates"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func itemToResponse(item *domain.VocabularyItem) ItemResponse {
	examples := item.ExampleSentences
	if examples == nil {
		examples = []domain.SentencePair{}
	}
	hints := item.Hints
	if hints == nil {
		hints = []string{}
	}

	return ItemResponse{
		ID:               item.ID.String(),
		SourceText:       item.SourceText,
		TargetText:       item.TargetText,
		OriginalLanguage: string(item.OriginalLanguage),
		PartOfSpeech:     item.PartOfSpeech,
		ExampleSentences: examples,
		Conjugations:     item.Conjugations,
		Hints:            hints,
		Review:           item.Review,
		Status:           string(item.Status),
		IsActive:         item.IsActive,
		Mastery: MasteryResponse{
			Level:          string(item.Mastery.Level),
			ReviewCount:    item.Mastery.ReviewCount,
			Streak:         item.Mastery.Streak,
			LastReviewedAt: item.Mastery.LastReviewedAt,
			NextReviewAt:   item.Mastery.NextReviewAt,
		},
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func itemsToResponse(items []*domain.VocabularyItem) ItemListResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}
	return ItemListResponse{Items: out, Count: len(out)}
}

func batchToResponse(result *vocabulary.BatchResult) BatchResponse {
	resp := BatchResponse{
		Entries:    make([]BatchEntryResponse, 0, len(result.Entries)),
		Created:    result.Count(vocabulary.OutcomeCreated),
		Duplicates: result.Count(vocabulary.OutcomeDuplicate),
		Failed:     result.Count(vocabulary.OutcomeFailed),
	}
	for _, entry := range result.Entries {
		e := BatchEntryResponse{Headword: entry.Headword, Outcome: entry.Outcome}
		if entry.Item != nil {
			item := itemToResponse(entry.Item)
			e.Item = &item
		}
		if entry.Err != nil {
			e.Error = GetSafeErrorMessage(entry.Err)
		}
		resp.Entries = append(resp.Entries, e)
	}
	return resp
}
