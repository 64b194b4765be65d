package llm

import (
	"context"
	"time"

	"study-quiz/internal/domain"
	"study-quiz/internal/logger"

	"go.uber.org/zap"
)

// LoggingGenerator is a decorator that logs every prompt and raw reply.
type LoggingGenerator struct {
	inner  domain.TextGenerator
	logger *zap.Logger
}

// WithLogging wraps g. A nil logger falls back to the request scoped one.
func WithLogging(g domain.TextGenerator, l *zap.Logger) domain.TextGenerator {
	return &LoggingGenerator{inner: g, logger: l}
}

func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	l := g.logger
	if l == nil {
		l = logger.FromContext(ctx)
	}
	l = l.With(zap.String("model", g.inner.ModelID()))

	l.Info("Sending prompt to LLM", zap.String("prompt", prompt))
	start := time.Now()

	raw, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		l.Error("LLM call failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", err
	}

	l.Info("Received from LLM",
		zap.String("raw_response", raw),
		zap.Duration("duration", time.Since(start)))
	return raw, nil
}

func (g *LoggingGenerator) ModelID() string {
	return g.inner.ModelID()
}
