package generation_test

import (
	"testing"

	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentItemParams(t *testing.T) {
	t.Parallel()

	content := &generation.Content{
		SourceText:       "Comer",
		TargetText:       "to eat",
		DetectedLanguage: "Native",
		PartOfSpeech:     "verb",
		ExampleSentences: []domain.SentencePair{{Target: "Como pan.", Native: "I eat bread."}},
		Conjugations: &domain.ConjugationTable{
			Forms: map[string]map[string]string{"present": {"yo": "como"}},
		},
		Hints: []string{" co-mare ", "", "comb", "extra"},
	}

	params, err := content.ItemParams()
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageNative, params.OriginalLanguage)
	assert.Equal(t, []string{"co-mare", "comb"}, params.Hints)
	require.NotNil(t, params.Conjugations)
	assert.Equal(t, "como", params.Conjugations.Forms["present"]["yo"])
}

func TestContentItemParamsEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("missing text", func(t *testing.T) {
		_, err := (&generation.Content{SourceText: "perro"}).ItemParams()
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("empty conjugation table means not a verb", func(t *testing.T) {
		params, err := (&generation.Content{
			SourceText:   "perro",
			TargetText:   "dog",
			Conjugations: &domain.ConjugationTable{},
		}).ItemParams()
		require.NoError(t, err)
		assert.Nil(t, params.Conjugations)
	})

	t.Run("unknown language defaults to target", func(t *testing.T) {
		content := &generation.Content{DetectedLanguage: "klingon"}
		assert.Equal(t, domain.LanguageTarget, content.Language())
	})
}
