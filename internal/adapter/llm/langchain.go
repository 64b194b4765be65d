package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOllamaModel = "qwen3:0.6b"
	defaultOpenAIModel = "gpt-4o-mini"
)

// LangchainGenerator implements domain.TextGenerator over any langchaingo
// model. It backs the ollama and openai providers.
type LangchainGenerator struct {
	provider string
	model    string
	llm      llms.Model
	callOpts []llms.CallOption
}

func newLangchainGenerator(provider, model string, llm llms.Model, opts Options) *LangchainGenerator {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.StructuredOutput {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return &LangchainGenerator{provider: provider, model: model, llm: llm, callOpts: callOpts}
}

// NewOllamaGenerator talks to a local Ollama server. No key is needed.
func NewOllamaGenerator(opts Options) (*LangchainGenerator, error) {
	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}
	ollamaOpts := []ollama.Option{
		ollama.WithServerURL(opts.ServerURL),
		ollama.WithModel(model),
	}
	if opts.HTTPClient != nil {
		ollamaOpts = append(ollamaOpts, ollama.WithHTTPClient(opts.HTTPClient))
	}
	llm, err := ollama.New(ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return newLangchainGenerator("ollama", model, llm, opts), nil
}

// NewOpenAIGenerator uses the OpenAI chat completions API.
func NewOpenAIGenerator(opts Options) (*LangchainGenerator, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingCredential
	}
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	openaiOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithModel(model),
	}
	if opts.HTTPClient != nil {
		openaiOpts = append(openaiOpts, openai.WithHTTPClient(opts.HTTPClient))
	}
	llm, err := openai.New(openaiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
	}
	return newLangchainGenerator("openai", model, llm, opts), nil
}

// Generate implements domain.TextGenerator
func (g *LangchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, g.callOpts...)
	if err != nil {
		return "", &ProviderError{Provider: g.provider, Err: err}
	}
	return response, nil
}

func (g *LangchainGenerator) ModelID() string {
	return g.model
}
