package validation

import (
	"strings"

	"study-quiz/internal/domain"
)

// Validator provides request validation functionality
type Validator struct {
	maxQuestions int
}

// NewValidator creates a new validator instance. maxQuestions caps
// numQuestions; zero or less means no cap.
func NewValidator(maxQuestions int) *Validator {
	return &Validator{maxQuestions: maxQuestions}
}

// ValidateQuizRequest checks every field of a quiz request and returns all
// problems found. An empty result means the request may be sent to the model.
func (v *Validator) ValidateQuizRequest(req domain.QuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Subject) == "" {
		errors = append(errors, domain.NewMissingFieldError("subject"))
	}

	switch {
	case req.Mode == "":
		errors = append(errors, domain.NewMissingFieldError("mode"))
	case !req.Mode.Valid():
		errors = append(errors, domain.NewInvalidValueError("mode", req.Mode))
	case req.Mode == domain.ModeUserInput && strings.TrimSpace(req.LearnedContent) == "":
		errors = append(errors, domain.NewMissingFieldError("learnedContent"))
	}

	switch {
	case req.NumQuestions == 0:
		errors = append(errors, domain.NewMissingFieldError("numQuestions"))
	case req.NumQuestions < 1 || (v.maxQuestions > 0 && req.NumQuestions > v.maxQuestions):
		errors = append(errors, domain.NewOutOfRangeError("numQuestions", req.NumQuestions, 1, v.maxQuestions))
	}

	switch {
	case req.QuestionType == "":
		errors = append(errors, domain.NewMissingFieldError("questionType"))
	case !req.QuestionType.Valid():
		errors = append(errors, domain.NewInvalidValueError("questionType", req.QuestionType))
	}

	return errors
}
