// Package view holds the study page state. Every user action is one method
// on State, and each field is written by exactly one of them.
package view

import (
	"context"
	"strings"

	"study-quiz/internal/domain"
)

const (
	DefaultNumQuestions = 2

	// MissingContentMessage is shown when userInput mode is submitted
	// without study content. No request is sent.
	MissingContentMessage = "학습 내용을 입력해주세요."
	// FallbackErrorMessage is shown when a failed request carries no text.
	FallbackErrorMessage = "데이터를 불러오는 중 에러가 발생했습니다."

	specialSubject = "정보처리기사 시스템 설계"
	specialTopic   = "정보처리기사 시스템 설계 복원문제 스타일"
)

// KnownSubjects are the study areas offered on the home page.
var KnownSubjects = []string{"데이터베이스", "프로그래밍 언어", "시스템 설계", "소프트웨어 공학", "정보시스템 관리"}

// Requester sends a quiz request to the generator.
type Requester interface {
	RequestQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error)
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error)

func (f RequesterFunc) RequestQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error) {
	return f(ctx, req)
}

// Form is the quiz option input. Zero values keep the current setting.
type Form struct {
	LearnedContent string
	Mode           domain.Mode
	NumQuestions   int
	QuestionType   domain.QuestionType
}

// State is the study page state for one user.
type State struct {
	// Subject is set on entry.
	Subject string `json:"subject"`

	// Written by UpdateForm.
	LearnedContent string              `json:"learnedContent"`
	Mode           domain.Mode         `json:"mode"`
	NumQuestions   int                 `json:"numQuestions"`
	QuestionType   domain.QuestionType `json:"questionType"`

	// Written by RequestQuiz.
	Result  *domain.QuizResult `json:"result,omitempty"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`

	// Written by RecordAnswer and cleared by RequestQuiz and Retry.
	Answers map[int]string `json:"answers,omitempty"`
	// Written by Submit and cleared by RequestQuiz and Retry.
	Submitted bool `json:"submitted"`
}

// New returns the state of a freshly entered study page.
func New(subject string) *State {
	return &State{
		Subject:      strings.TrimSpace(subject),
		Mode:         domain.ModeUserInput,
		NumQuestions: DefaultNumQuestions,
		QuestionType: domain.QuestionTypeAny,
		Answers:      map[int]string{},
	}
}

// SpecificTopic is derived from the subject. Only one subject has a
// topic style hint, and only when quizzing from the topic alone.
func (s *State) SpecificTopic() string {
	if s.Mode == domain.ModeTopicOnly && s.Subject == specialSubject {
		return specialTopic
	}
	return ""
}

// UpdateForm applies the quiz options. It is ignored while a request is
// in flight.
func (s *State) UpdateForm(f Form) {
	if s.Loading {
		return
	}
	s.LearnedContent = f.LearnedContent
	if f.Mode != "" {
		s.Mode = f.Mode
	}
	if f.NumQuestions > 0 {
		s.NumQuestions = f.NumQuestions
	}
	if f.QuestionType != "" {
		s.QuestionType = f.QuestionType
	}
}

// Request builds the request body for the current options.
func (s *State) Request() domain.QuizRequest {
	req := domain.QuizRequest{
		Subject:       s.Subject,
		Mode:          s.Mode,
		NumQuestions:  s.NumQuestions,
		QuestionType:  s.QuestionType,
		SpecificTopic: s.SpecificTopic(),
	}
	if s.Mode == domain.ModeUserInput {
		req.LearnedContent = s.LearnedContent
	}
	return req
}

// RequestQuiz sends the current options through r and stores the outcome.
// A request already in flight makes this a no-op.
func (s *State) RequestQuiz(ctx context.Context, r Requester) {
	if s.Loading {
		return
	}
	if s.Mode == domain.ModeUserInput && strings.TrimSpace(s.LearnedContent) == "" {
		s.Error = MissingContentMessage
		return
	}

	s.Loading = true
	defer func() { s.Loading = false }()

	s.Result = nil
	s.Error = ""
	s.Answers = map[int]string{}
	s.Submitted = false

	result, err := r.RequestQuiz(ctx, s.Request())
	if err != nil {
		s.Error = domain.PublicMessage(err)
		if s.Error == "" {
			s.Error = FallbackErrorMessage
		}
		return
	}
	s.Result = result
}

// RecordAnswer stores the answer for question id. Answers are frozen once
// submitted, and ids outside the current quiz are ignored.
func (s *State) RecordAnswer(id int, answer string) {
	if s.Submitted || s.question(id) == nil {
		return
	}
	if s.Answers == nil {
		s.Answers = map[int]string{}
	}
	s.Answers[id] = answer
}

// Submit reveals the answers. It needs a quiz with at least one question.
func (s *State) Submit() {
	if s.Result == nil || len(s.Result.Questions) == 0 {
		return
	}
	s.Submitted = true
}

// Retry clears the answers so the same quiz can be taken again. The quiz
// is kept and nothing is requested.
func (s *State) Retry() {
	s.Answers = map[int]string{}
	s.Submitted = false
}

// CanSubmit reports whether the submit action is available.
func (s *State) CanSubmit() bool {
	return !s.Submitted && s.Result != nil && len(s.Result.Questions) > 0
}

// Outcome is the graded answer to one question.
type Outcome struct {
	Question domain.Question
	Given    string
	Correct  bool
}

// Outcomes grades every question by exact string equality. It returns nil
// before submit.
func (s *State) Outcomes() []Outcome {
	if !s.Submitted || s.Result == nil {
		return nil
	}
	out := make([]Outcome, 0, len(s.Result.Questions))
	for _, q := range s.Result.Questions {
		given := s.Answers[q.ID]
		out = append(out, Outcome{Question: q, Given: given, Correct: q.IsCorrect(given)})
	}
	return out
}

// Score counts correct outcomes.
func (s *State) Score() (correct, total int) {
	for _, o := range s.Outcomes() {
		if o.Correct {
			correct++
		}
		total++
	}
	return correct, total
}

func (s *State) question(id int) *domain.Question {
	if s.Result == nil {
		return nil
	}
	for i := range s.Result.Questions {
		if s.Result.Questions[i].ID == id {
			return &s.Result.Questions[i]
		}
	}
	return nil
}
