package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/scry-lexicon/internal/domain"
)

// Generator defines the interface for generating vocabulary content from a
// headword. Implementations wrap an external AI service.
type Generator interface {
	// Generate returns the content for headword, which may be in either
	// language. Failures wrap one of the errors in errors.go.
	Generate(ctx context.Context, headword string) (*Content, error)
}

// Content is what the Content Generator returns for one headword.
type Content struct {
	SourceText string
	TargetText string
	// DetectedLanguage is "native" or "target": the language headword was written in.
	DetectedLanguage string
	PartOfSpeech     string
	ExampleSentences []domain.SentencePair
	// Conjugations is set only for verbs.
	Conjugations *domain.ConjugationTable
	Hints        []string
}

// Language maps DetectedLanguage onto the domain enum. Anything other than
// "native" is treated as the target language.
func (c *Content) Language() domain.Language {
	if strings.EqualFold(strings.TrimSpace(c.DetectedLanguage), string(domain.LanguageNative)) {
		return domain.LanguageNative
	}
	return domain.LanguageTarget
}

// ItemParams converts the content into parameters for a new vocabulary item.
// Hints beyond domain.MaxHints are dropped and an empty conjugation table is
// treated as absent.
func (c *Content) ItemParams() (domain.NewItemParams, error) {
	if strings.TrimSpace(c.SourceText) == "" || strings.TrimSpace(c.TargetText) == "" {
		return domain.NewItemParams{}, fmt.Errorf("%w: missing source or target text", ErrInvalidResponse)
	}

	hints := make([]string, 0, domain.MaxHints)
	for _, hint := range c.Hints {
		if hint = strings.TrimSpace(hint); hint != "" && len(hints) < domain.MaxHints {
			hints = append(hints, hint)
		}
	}

	conjugations := c.Conjugations
	if conjugations != nil && len(conjugations.Forms) == 0 {
		conjugations = nil
	}

	return domain.NewItemParams{
		SourceText:       c.SourceText,
		TargetText:       c.TargetText,
		OriginalLanguage: c.Language(),
		PartOfSpeech:     c.PartOfSpeech,
		ExampleSentences: c.ExampleSentences,
		Conjugations:     conjugations,
		Hints:            hints,
	}, nil
}
