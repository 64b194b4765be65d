package service

import (
	"study-quiz/internal/domain"

	"go.uber.org/zap"
)

// reconcile narrows the parsed questions to what the user asked for and
// renumbers them 1..K. pick returns a uniform index in [0, n).
func reconcile(questions []domain.Question, req domain.QuizRequest, requested int, pick func(n int) int, l *zap.Logger) []domain.Question {
	available := len(questions)
	wanted := req.NumQuestions

	var kept []domain.Question
	switch {
	case req.Mode == domain.ModeTopicOnly && wanted == 1 && requested > wanted && available >= requested:
		chosen := pick(available)
		l.Debug("Picked one question from pool", zap.Int("pool_size", available), zap.Int("index", chosen))
		kept = []domain.Question{questions[chosen]}
	case available >= wanted:
		kept = questions[:wanted]
	default:
		l.Warn("AI returned fewer questions than requested",
			zap.Int("num_requested", wanted),
			zap.Int("num_returned", available))
		kept = questions
	}

	out := make([]domain.Question, len(kept))
	for i, q := range kept {
		q.ID = i + 1
		out[i] = q
	}
	return out
}
