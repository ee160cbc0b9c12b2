package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"google.golang.org/genai"
)

//go:embed prompts/vocabulary.tmpl
var defaultPrompt string

// contentClient is the part of the genai client the generator uses.
// *genai.Models satisfies it.
type contentClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger         *slog.Logger
	promptTemplate *template.Template
	client         contentClient
	model          string
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a GeminiGenerator from the LLM configuration.
// The built-in prompt is used unless cfg.PromptTemplatePath is set.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	promptText := defaultPrompt
	if cfg.PromptTemplatePath != "" {
		content, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template: %v", generation.ErrInvalidConfig, err)
		}
		promptText = string(content)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg.ModelName, promptText)
}

func newGenerator(logger *slog.Logger, client contentClient, model, promptText string) (*GeminiGenerator, error) {
	tmpl, err := template.New("vocabulary").Option("missingkey=error").Parse(promptText)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		promptTemplate: tmpl,
		client:         client,
		model:          model,
	}, nil
}

func (g *GeminiGenerator) createPrompt(headword string) (string, error) {
	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, promptData{Headword: headword}); err != nil {
		return "", fmt.Errorf("%w: failed to execute prompt template: %v", generation.ErrInvalidConfig, err)
	}
	return buf.String(), nil
}

// Generate asks the model for the content of headword. Each call is a single
// request; callers that batch requests are responsible for pacing.
func (g *GeminiGenerator) Generate(ctx context.Context, headword string) (*generation.Content, error) {
	headword = strings.TrimSpace(headword)
	if headword == "" {
		return nil, generation.ErrEmptyHeadword
	}

	prompt, err := g.createPrompt(headword)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "calling Gemini API",
		slog.String("model", g.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := g.client.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text, err := responseText(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "unusable Gemini response",
			slog.String("headword", headword),
			slog.String("error", err.Error()))
		return nil, err
	}

	content, err := parseResponse(text)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "generated content",
		slog.String("headword", headword),
		slog.Bool("is_verb", content.Conjugations != nil),
		slog.Int("hint_count", len(content.Hints)))

	return content, nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: response has no text", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}

// parseResponse decodes the model's JSON reply.
func parseResponse(text string) (*generation.Content, error) {
	// Models occasionally wrap JSON in a markdown fence despite the MIME type.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var schema ResponseSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if strings.TrimSpace(schema.SourceText) == "" || strings.TrimSpace(schema.TargetText) == "" {
		return nil, fmt.Errorf("%w: missing source or target text", generation.ErrInvalidResponse)
	}

	return &generation.Content{
		SourceText:       schema.SourceText,
		TargetText:       schema.TargetText,
		DetectedLanguage: schema.DetectedLanguage,
		PartOfSpeech:     schema.PartOfSpeech,
		ExampleSentences: schema.ExampleSentences,
		Conjugations:     schema.Conjugations,
		Hints:            schema.Hints,
	}, nil
}
