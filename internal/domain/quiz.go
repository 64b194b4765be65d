package domain

// Mode selects where the quiz material comes from.
type Mode string

const (
	// ModeUserInput derives the quiz from content the user studied.
	ModeUserInput Mode = "userInput"
	// ModeTopicOnly generates the quiz from the subject name alone.
	ModeTopicOnly Mode = "topicOnly"
)

func (m Mode) Valid() bool {
	return m == ModeUserInput || m == ModeTopicOnly
}

// QuestionType is the kind of question the user asked for.
type QuestionType string

const (
	QuestionTypeAny            QuestionType = "any"
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeShortAnswer    QuestionType = "shortAnswer"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeAny, QuestionTypeMultipleChoice, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// QuizRequest is one quiz generation request.
type QuizRequest struct {
	Subject        string       `json:"subject"`
	Mode           Mode         `json:"mode"`
	LearnedContent string       `json:"learnedContent,omitempty"`
	NumQuestions   int          `json:"numQuestions"`
	QuestionType   QuestionType `json:"questionType"`
	SpecificTopic  string       `json:"specificTopic,omitempty"`
}

// Question is a normalized quiz question. Type is never QuestionTypeAny.
type Question struct {
	ID          int          `json:"id"`
	Type        QuestionType `json:"type"`
	Question    string       `json:"question"`
	Options     []string     `json:"options,omitempty"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
}

// IsCorrect compares answer with the expected answer by exact equality.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.Answer
}

// QuizResult is the quiz returned to the client. It is never stored.
type QuizResult struct {
	Summary   string     `json:"summary"`
	Questions []Question `json:"questions"`
}
