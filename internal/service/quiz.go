package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"study-quiz/internal/config"
	"study-quiz/internal/domain"
	"study-quiz/internal/logger"
	"study-quiz/internal/validation"

	"go.uber.org/zap"
)

const missingCredentialMessage = "Server configuration error: API key not found."

// QuizService defines the interface for quiz generation
type QuizService interface {
	domain.QuizGenerator
	// Configured reports whether a model is available to serve requests.
	Configured() bool
}

// Option customizes a quizService.
type Option func(*quizService)

// WithPicker replaces the random index source used for single question
// topic quizzes.
func WithPicker(pick func(n int) int) Option {
	return func(s *quizService) {
		s.pick = pick
	}
}

// WithConfigurationProblem records why no generator is available. The
// message is returned to every request.
func WithConfigurationProblem(message string) Option {
	return func(s *quizService) {
		s.configProblem = message
	}
}

// quizService implements QuizService
type quizService struct {
	generator     domain.TextGenerator
	validator     *validation.Validator
	prompts       PromptBuilder
	strictSchema  bool
	pick          func(n int) int
	configProblem string
}

// NewQuizService creates a new instance of quizService. A nil generator
// makes every request fail with a configuration error.
func NewQuizService(generator domain.TextGenerator, cfg config.QuizConfig, opts ...Option) QuizService {
	s := &quizService{
		generator: generator,
		validator: validation.NewValidator(cfg.MaxQuestions),
		prompts: PromptBuilder{
			Language:        cfg.Language,
			SingleTopicPool: cfg.SingleTopicPool,
		},
		strictSchema:  cfg.StrictSchema,
		pick:          rand.IntN,
		configProblem: missingCredentialMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *quizService) Configured() bool {
	return s.generator != nil
}

// GenerateQuiz implements domain.QuizGenerator
func (s *quizService) GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error) {
	l := logger.FromContext(ctx)

	if s.generator == nil {
		l.Error("Quiz generation is not configured", zap.String("reason", s.configProblem))
		return nil, domain.NewConfigurationError(s.configProblem)
	}

	if errs := s.validator.ValidateQuizRequest(req); len(errs) > 0 {
		return nil, errs
	}

	prompt, requested := s.prompts.Build(req)
	l.Info("Generating quiz",
		zap.String("subject", req.Subject),
		zap.String("mode", string(req.Mode)),
		zap.Int("num_questions", req.NumQuestions),
		zap.Int("requested_from_model", requested),
		zap.String("model", s.generator.ModelID()))

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		l.Error("AI request failed", zap.Error(err))
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewLLMServiceError(err)
	}

	parser := ReplyParser{StrictSchema: s.strictSchema, Logger: l}
	result, err := parser.Parse(raw, req.Mode)
	if err != nil {
		return nil, err
	}

	result.Questions = reconcile(result.Questions, req, requested, s.pick, l)
	l.Info("Quiz generated", zap.Int("num_questions", len(result.Questions)))
	return result, nil
}
