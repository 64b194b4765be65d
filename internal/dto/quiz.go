package dto

import "study-quiz/internal/domain"

// GenerateQuizRequest is the body of POST /api/generate-quiz
// @Description Quiz generation request
type GenerateQuizRequest struct {
	Subject        string `json:"subject" example:"데이터베이스"`
	Mode           string `json:"mode" example:"topicOnly" enums:"userInput,topicOnly"`
	LearnedContent string `json:"learnedContent,omitempty"`
	NumQuestions   int    `json:"numQuestions" example:"2"`
	QuestionType   string `json:"questionType" example:"any" enums:"any,multipleChoice,shortAnswer"`
	SpecificTopic  string `json:"specificTopic,omitempty"`
}

// ToDomain converts the wire request into the domain request.
func (r GenerateQuizRequest) ToDomain() domain.QuizRequest {
	return domain.QuizRequest{
		Subject:        r.Subject,
		Mode:           domain.Mode(r.Mode),
		LearnedContent: r.LearnedContent,
		NumQuestions:   r.NumQuestions,
		QuestionType:   domain.QuestionType(r.QuestionType),
		SpecificTopic:  r.SpecificTopic,
	}
}

// QuestionResponse is one generated question
type QuestionResponse struct {
	ID          int      `json:"id"`
	Type        string   `json:"type" enums:"multipleChoice,shortAnswer"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// GenerateQuizResponse is the body of a successful generation
// @Description Generated quiz
type GenerateQuizResponse struct {
	Summary   string             `json:"summary"`
	Questions []QuestionResponse `json:"questions"`
}

// NewGenerateQuizResponse maps a domain result onto the wire shape.
// Questions is never null.
func NewGenerateQuizResponse(result *domain.QuizResult) GenerateQuizResponse {
	resp := GenerateQuizResponse{Questions: []QuestionResponse{}}
	if result == nil {
		return resp
	}
	resp.Summary = result.Summary
	for _, q := range result.Questions {
		resp.Questions = append(resp.Questions, QuestionResponse{
			ID:          q.ID,
			Type:        string(q.Type),
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}
	return resp
}

// ToDomain converts the wire response back into a domain result. Used by
// API clients.
func (r GenerateQuizResponse) ToDomain() *domain.QuizResult {
	result := &domain.QuizResult{Summary: r.Summary, Questions: make([]domain.Question, 0, len(r.Questions))}
	for _, q := range r.Questions {
		result.Questions = append(result.Questions, domain.Question{
			ID:          q.ID,
			Type:        domain.QuestionType(q.Type),
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}
	return result
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// FieldError is one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status        string `json:"status" example:"ok"`
	LLMConfigured bool   `json:"llm_configured"`
}
