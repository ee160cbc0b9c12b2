package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxHints is the maximum number of pronunciation hints an item may carry.
const MaxHints = 2

// SentencePair is one example sentence in the target language together with
// its gloss in the learner's native language.
type SentencePair struct {
	Target string `json:"target"`
	Native string `json:"native"`
}

// ConjugationTable maps tense → person → surface form. Irregular lists the
// persons whose forms do not follow the regular pattern.
type ConjugationTable struct {
	Forms     map[string]map[string]string `json:"forms"`
	Irregular []string                     `json:"irregular,omitempty"`
}

// Clone returns a deep copy of the table. A nil table clones to nil.
func (c *ConjugationTable) Clone() *ConjugationTable {
	if c == nil {
		return nil
	}

	forms := make(map[string]map[string]string, len(c.Forms))
	for tense, persons := range c.Forms {
		copied := make(map[string]string, len(persons))
		for person, form := range persons {
			copied[person] = form
		}
		forms[tense] = copied
	}

	return &ConjugationTable{
		Forms:     forms,
		Irregular: append([]string(nil), c.Irregular...),
	}
}

// Mastery holds the spaced-repetition state of an item. Only the srs package
// computes new values for it.
type Mastery struct {
	Level          MasteryLevel
	ReviewCount    int
	Streak         int
	LastReviewedAt *time.Time
	NextReviewAt   time.Time
}

// NewMastery returns the initial mastery state: reviewing, never reviewed and
// due immediately.
func NewMastery(now time.Time) Mastery {
	return Mastery{
		Level:        LevelReviewing,
		NextReviewAt: now,
	}
}

// VocabularyItem is one learned word pair.
type VocabularyItem struct {
	ID               uuid.UUID
	SourceText       string
	TargetText       string
	OriginalLanguage Language
	PartOfSpeech     string
	ExampleSentences []SentencePair
	// Conjugations is present if and only if the item is a verb.
	Conjugations *ConjugationTable
	Hints        []string
	Review       bool
	Status       Status
	IsActive     bool
	Mastery      Mastery
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewItemParams carries the caller-supplied content of a new item.
type NewItemParams struct {
	SourceText       string
	TargetText       string
	OriginalLanguage Language
	PartOfSpeech     string
	ExampleSentences []SentencePair
	Conjugations     *ConjugationTable
	Hints            []string
}

// NewVocabularyItem creates an item in its initial lifecycle state: status
// ReviewNow, review enabled, active, reviewing and due at now.
// Texts are normalized before validation.
func NewVocabularyItem(params NewItemParams, now time.Time) (*VocabularyItem, error) {
	lang := params.OriginalLanguage
	if lang == "" {
		lang = LanguageTarget
	}

	item := &VocabularyItem{
		ID:               uuid.New(),
		SourceText:       Normalize(params.SourceText),
		TargetText:       Normalize(params.TargetText),
		OriginalLanguage: lang,
		PartOfSpeech:     strings.TrimSpace(params.PartOfSpeech),
		ExampleSentences: append([]SentencePair(nil), params.ExampleSentences...),
		Conjugations:     params.Conjugations.Clone(),
		Hints:            append([]string(nil), params.Hints...),
		Review:           true,
		Status:           StatusReviewNow,
		IsActive:         true,
		Mastery:          NewMastery(now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Normalize returns the canonical comparison form of a text: trimmed and lowercased.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// IsVerb reports whether the item denotes a verb.
func (i *VocabularyItem) IsVerb() bool {
	return i.Conjugations != nil
}

// Validate checks the item's invariants.
func (i *VocabularyItem) Validate() error {
	if i.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrItemIDEmpty)
	}

	if i.SourceText == "" || i.TargetText == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyText)
	}

	if !i.OriginalLanguage.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidLanguage, i.OriginalLanguage)
	}

	if !i.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidStatus, i.Status)
	}

	if len(i.Hints) > MaxHints {
		return fmt.Errorf("%w: %w: got %d", ErrValidation, ErrTooManyHints, len(i.Hints))
	}

	if i.Conjugations != nil && len(i.Conjugations.Forms) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyConjugation)
	}

	if !i.Mastery.Level.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidLevel, i.Mastery.Level)
	}

	if i.Mastery.ReviewCount < 0 || i.Mastery.Streak < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNegativeCounter)
	}

	if i.Mastery.NextReviewAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNextReviewUnset)
	}

	return nil
}

// Clone returns a deep copy of the item so callers never share slices or
// maps with the repository.
func (i *VocabularyItem) Clone() *VocabularyItem {
	c := *i
	c.ExampleSentences = append([]SentencePair(nil), i.ExampleSentences...)
	c.Conjugations = i.Conjugations.Clone()
	c.Hints = append([]string(nil), i.Hints...)
	if i.Mastery.LastReviewedAt != nil {
		last := *i.Mastery.LastReviewedAt
		c.Mastery.LastReviewedAt = &last
	}
	return &c
}
