package domain

import "context"

// TextGenerator is the hosted language model seen as a text completion
// oracle. Implementations live in internal/adapter/llm.
type TextGenerator interface {
	// Generate sends prompt to the model and returns its raw text reply.
	Generate(ctx context.Context, prompt string) (string, error)
	// ModelID returns the model identifier used for requests.
	ModelID() string
}

// QuizGenerator turns a QuizRequest into a QuizResult.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, req QuizRequest) (*QuizResult, error)
}
