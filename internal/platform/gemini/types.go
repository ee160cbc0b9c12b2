package gemini

import "github.com/phrazzld/scry-lexicon/internal/domain"

// promptData represents the data passed to the prompt template
type promptData struct {
	Headword string
}

// ResponseSchema is the JSON object the model is asked to return.
type ResponseSchema struct {
	SourceText       string                   `json:"source_text"`
	TargetText       string                   `json:"target_text"`
	DetectedLanguage string                   `json:"detected_language"`
	PartOfSpeech     string                   `json:"part_of_speech"`
	ExampleSentences []domain.SentencePair    `json:"example_sentences"`
	Conjugations     *domain.ConjugationTable `json:"conjugation_table"`
	Hints            []string                 `json:"hints"`
}
