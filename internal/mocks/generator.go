package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, headword string) (*generation.Content, error)

	// Default response values
	Content *generation.Content
	Err     error

	// Call tracking for verification
	GenerateCalls struct {
		mu        sync.Mutex
		Count     int
		Headwords []string
	}
}

var _ generation.Generator = (*MockGenerator)(nil)

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, headword string) (*generation.Content, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Headwords = append(m.GenerateCalls.Headwords, headword)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, headword)
	}

	return m.Content, m.Err
}

// CallCount returns how many times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// Headwords returns a copy of the headwords passed to Generate, in call order.
func (m *MockGenerator) Headwords() []string {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return append([]string(nil), m.GenerateCalls.Headwords...)
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewDictionaryGenerator creates a MockGenerator that answers from a fixed
// headword → translation dictionary and fails with ErrGenerationFailed for
// unknown headwords. Headwords ending in "ar", "er" or "ir" come back as verbs.
func NewDictionaryGenerator(dictionary map[string]string) *MockGenerator {
	return &MockGenerator{
		GenerateFn: func(ctx context.Context, headword string) (*generation.Content, error) {
			key := strings.ToLower(strings.TrimSpace(headword))
			translation, ok := dictionary[key]
			if !ok {
				return nil, generation.ErrGenerationFailed
			}

			content := &generation.Content{
				SourceText:       key,
				TargetText:       translation,
				DetectedLanguage: string(domain.LanguageTarget),
				PartOfSpeech:     "noun",
				ExampleSentences: []domain.SentencePair{{Target: key + ".", Native: translation + "."}},
				Hints:            []string{key + "-hint"},
			}
			for _, suffix := range []string{"ar", "er", "ir"} {
				if strings.HasSuffix(key, suffix) {
					content.PartOfSpeech = "verb"
					content.Conjugations = &domain.ConjugationTable{
						Forms: map[string]map[string]string{"present": {"yo": strings.TrimSuffix(key, suffix) + "o"}},
					}
				}
			}
			return content, nil
		},
	}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Headwords = nil
}
