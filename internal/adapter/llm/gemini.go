package llm

import (
	"context"
	"errors"
	"fmt"

	"study-quiz/internal/quizschema"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiSafetyCategories are relaxed to BLOCK_NONE so that exam material
// on security topics is not filtered.
var geminiSafetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// GeminiGenerator implements domain.TextGenerator using the Google Gemini SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiGenerator creates a Gemini backed generator.
func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingCredential
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		config: buildGeminiConfig(opts),
	}, nil
}

func buildGeminiConfig(opts Options) *genai.GenerateContentConfig {
	temp := float32(opts.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	for _, category := range geminiSafetyCategories {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	if opts.StructuredOutput {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = buildGeminiSchema(quizschema.Definition())
	}
	return cfg
}

// Generate implements domain.TextGenerator
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", mapGeminiError(err)
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("empty response from Gemini")
	}
	return text, nil
}

func (g *GeminiGenerator) ModelID() string {
	return g.model
}

// geminiTypes covers the JSON Schema types used by the quiz reply schema.
var geminiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
}

// buildGeminiSchema translates the quiz reply schema into the subset Gemini
// accepts. Only the type, description, properties, items, required and enum
// keywords are carried; anything else in def is ignored.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	t, ok := geminiTypes[fmt.Sprint(def["type"])]
	if !ok {
		t = genai.TypeString
	}
	desc, _ := def["description"].(string)
	out := &genai.Schema{
		Type:        t,
		Description: desc,
		Required:    stringList(def["required"]),
		Enum:        stringList(def["enum"]),
	}

	switch t {
	case genai.TypeObject:
		props, _ := def["properties"].(map[string]any)
		for name, v := range props {
			sub, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if out.Properties == nil {
				out.Properties = make(map[string]*genai.Schema, len(props))
			}
			out.Properties[name] = buildGeminiSchema(sub)
		}
	case genai.TypeArray:
		if items, ok := def["items"].(map[string]any); ok {
			out.Items = buildGeminiSchema(items)
		}
	}
	return out
}

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: "gemini", StatusCode: apiErr.Code, Err: err}
	}
	return &ProviderError{Provider: "gemini", Err: err}
}
