// Package llm adapts hosted language models to domain.TextGenerator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"study-quiz/internal/config"
	"study-quiz/internal/domain"

	"go.uber.org/zap"
)

// ErrMissingCredential is returned when a provider that needs an API key
// is configured without one.
var ErrMissingCredential = errors.New("API key not found")

// Options are the provider independent generation settings.
type Options struct {
	APIKey           string
	Model            string
	ServerURL        string
	Temperature      float64
	MaxTokens        int
	StructuredOutput bool
	HTTPClient       *http.Client
}

// ProviderError wraps a transport or API failure from a provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewTextGenerator builds the generator selected by cfg, wrapped with
// prompt and response logging.
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (domain.TextGenerator, error) {
	opts := Options{
		APIKey:           cfg.APIKey,
		Model:            cfg.Model,
		ServerURL:        cfg.ServerURL,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		StructuredOutput: cfg.StructuredOutput,
	}

	var (
		base domain.TextGenerator
		err  error
	)
	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiGenerator(ctx, opts)
	case "anthropic":
		base, err = NewAnthropicGenerator(opts)
	case "openai":
		base, err = NewOpenAIGenerator(opts)
	case "ollama":
		base, err = NewOllamaGenerator(opts)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, logger), nil
}
