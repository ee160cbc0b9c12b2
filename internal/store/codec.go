package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-lexicon/internal/domain"
)

// collectionVersion is the current aggregate format version.
const collectionVersion = 1

// timeLayout is the ISO-8601 form used for instants on disk.
const timeLayout = time.RFC3339Nano

// collectionRecord is the persisted aggregate.
type collectionRecord struct {
	Version int          `json:"version"`
	Items   []itemRecord `json:"items"`
}

// itemRecord is the on-disk row for one vocabulary item. Instants are strings
// here and live time.Time values everywhere else.
type itemRecord struct {
	ID               uuid.UUID                `json:"id"`
	SourceText       string                   `json:"source_text"`
	TargetText       string                   `json:"target_text"`
	OriginalLanguage string                   `json:"original_language"`
	PartOfSpeech     string                   `json:"part_of_speech"`
	ExampleSentences []domain.SentencePair    `json:"example_sentences,omitempty"`
	Conjugations     *domain.ConjugationTable `json:"conjugation_table,omitempty"`
	Hints            []string                 `json:"hints,omitempty"`
	Review           bool                     `json:"review"`
	Status           string                   `json:"status"`
	IsActive         bool                     `json:"is_active"`
	Level            string                   `json:"level"`
	ReviewCount      int                      `json:"review_count"`
	Streak           int                      `json:"streak"`
	LastReviewedAt   *string                  `json:"last_reviewed_at,omitempty"`
	NextReviewAt     string                   `json:"next_review_at"`
	CreatedAt        string                   `json:"created_at"`
	UpdatedAt        string                   `json:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrCorruptPayload, field, err)
	}
	return t.UTC(), nil
}

func toRecord(item *domain.VocabularyItem) itemRecord {
	rec := itemRecord{
		ID:               item.ID,
		SourceText:       item.SourceText,
		TargetText:       item.TargetText,
		OriginalLanguage: string(item.OriginalLanguage),
		PartOfSpeech:     item.PartOfSpeech,
		ExampleSentences: item.ExampleSentences,
		Conjugations:     item.Conjugations,
		Hints:            item.Hints,
		Review:           item.Review,
		Status:           string(item.Status),
		IsActive:         item.IsActive,
		Level:            string(item.Mastery.Level),
		ReviewCount:      item.Mastery.ReviewCount,
		Streak:           item.Mastery.Streak,
		NextReviewAt:     formatTime(item.Mastery.NextReviewAt),
		CreatedAt:        formatTime(item.CreatedAt),
		UpdatedAt:        formatTime(item.UpdatedAt),
	}

	if item.Mastery.LastReviewedAt != nil {
		last := formatTime(*item.Mastery.LastReviewedAt)
		rec.LastReviewedAt = &last
	}

	return rec
}

func fromRecord(rec itemRecord) (*domain.VocabularyItem, error) {
	nextReview, err := parseTime("next_review_at", rec.NextReviewAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime("created_at", rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime("updated_at", rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item := &domain.VocabularyItem{
		ID:               rec.ID,
		SourceText:       rec.SourceText,
		TargetText:       rec.TargetText,
		OriginalLanguage: domain.Language(rec.OriginalLanguage),
		PartOfSpeech:     rec.PartOfSpeech,
		ExampleSentences: nilIfEmpty(rec.ExampleSentences),
		Conjugations:     rec.Conjugations,
		Hints:            nilIfEmpty(rec.Hints),
		Review:           rec.Review,
		Status:           domain.Status(rec.Status),
		IsActive:         rec.IsActive,
		Mastery: domain.Mastery{
			Level:        domain.MasteryLevel(rec.Level),
			ReviewCount:  rec.ReviewCount,
			Streak:       rec.Streak,
			NextReviewAt: nextReview,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	if rec.LastReviewedAt != nil {
		last, err := parseTime("last_reviewed_at", *rec.LastReviewedAt)
		if err != nil {
			return nil, err
		}
		item.Mastery.LastReviewedAt = &last
	}

	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: item %s: %v", ErrCorruptPayload, rec.ID, err)
	}

	return item, nil
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// EncodeCollection serializes the whole collection into its persisted form.
func EncodeCollection(items []*domain.VocabularyItem) ([]byte, error) {
	record := collectionRecord{
		Version: collectionVersion,
		Items:   make([]itemRecord, 0, len(items)),
	}
	for _, item := range items {
		record.Items = append(record.Items, toRecord(item))
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return payload, nil
}

// DecodeCollection parses a persisted collection. It fails as a whole with
// ErrCorruptPayload if any part of the payload is unreadable or invalid, and
// never returns a partial collection.
func DecodeCollection(payload []byte) ([]*domain.VocabularyItem, error) {
	var record collectionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	if record.Version != collectionVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptPayload, record.Version)
	}

	items := make([]*domain.VocabularyItem, 0, len(record.Items))
	seen := make(map[uuid.UUID]struct{}, len(record.Items))
	for _, rec := range record.Items {
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: repeated item id %s", ErrCorruptPayload, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		item, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		if conflict := findDuplicate(items, item.SourceText, item.TargetText, item.ID); conflict != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, conflict)
		}
		items = append(items, item)
	}

	return items, nil
}
