package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"study-quiz/internal/domain"
	"study-quiz/internal/quizschema"

	"go.uber.org/zap"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	bracesPattern     = regexp.MustCompile(`\{[\s\S]*\}`)
)

// errNoJSON means the reply contained neither a fenced block nor braces.
var errNoJSON = errors.New("no JSON object found in AI response")

// extractJSON returns the JSON span embedded in a model reply. A valid
// fenced block wins over a bare brace span; the brace span runs from the
// first '{' to the last '}'. A fenced body cut short by a backtick run
// inside a string is not valid JSON, so the brace span is tried next.
// When nothing is valid the first candidate is returned for decoding to
// report.
func extractJSON(raw string) (string, error) {
	var fallback string
	for _, m := range fencedJSONPattern.FindAllStringSubmatch(raw, -1) {
		body := strings.TrimSpace(m[1])
		if !strings.HasPrefix(body, "{") {
			continue
		}
		if json.Valid([]byte(body)) {
			return body, nil
		}
		if fallback == "" {
			fallback = body
		}
	}
	span := bracesPattern.FindString(raw)
	if span != "" && (fallback == "" || json.Valid([]byte(span))) {
		return span, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errNoJSON
}

// flexString accepts a JSON string, number or boolean and keeps it as text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*f = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*f = flexString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("cannot use %s as text", string(data))
	}
	return nil
}

// rawReply is the loosely typed first pass over the model JSON.
type rawReply struct {
	Summary   json.RawMessage `json:"summary"`
	Questions json.RawMessage `json:"questions"`
}

type rawQuestion struct {
	Type        string       `json:"type"`
	Question    flexString   `json:"question"`
	Options     []flexString `json:"options"`
	Answer      flexString   `json:"answer"`
	Explanation flexString   `json:"explanation"`
}

// ReplyParser turns raw model text into a QuizResult. Parsing is
// deterministic: the same input always yields the same result.
type ReplyParser struct {
	// StrictSchema additionally validates the extracted JSON against the
	// quiz schema.
	StrictSchema bool
	Logger       *zap.Logger
}

func (p ReplyParser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Parse extracts, decodes and normalizes the quiz in raw. Question ids are
// left unset; they are assigned after reconciliation.
func (p ReplyParser) Parse(raw string, mode domain.Mode) (*domain.QuizResult, error) {
	l := p.logger()

	span, err := extractJSON(raw)
	if err != nil {
		l.Error("Could not find JSON in AI response", zap.String("raw_response", raw))
		return nil, domain.NewParsingError(raw, err)
	}

	var reply rawReply
	if err := json.Unmarshal([]byte(span), &reply); err != nil {
		l.Error("Failed to unmarshal AI response JSON", zap.Error(err), zap.String("json_string_tried_to_parse", span))
		return nil, domain.NewParsingError(raw, fmt.Errorf("failed to unmarshal JSON: %w", err))
	}

	if p.StrictSchema {
		if err := quizschema.Validate([]byte(span)); err != nil {
			l.Error("AI response does not match quiz schema", zap.Error(err))
			return nil, domain.NewParsingError(raw, err)
		}
	}

	result := &domain.QuizResult{
		Summary:   p.decodeSummary(reply.Summary),
		Questions: p.normalizeQuestions(reply.Questions),
	}
	if result.Summary == "" && mode == domain.ModeUserInput {
		l.Warn("AI response has no summary for user input quiz")
	}
	return result, nil
}

// decodeSummary keeps a scalar summary as text. Objects and arrays become
// an empty summary rather than failing the whole reply.
func (p ReplyParser) decodeSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s flexString
	if err := json.Unmarshal(raw, &s); err != nil {
		p.logger().Warn("AI response summary is not text, using an empty summary", zap.ByteString("summary", raw))
		return ""
	}
	return strings.TrimSpace(string(s))
}

func (p ReplyParser) normalizeQuestions(raw json.RawMessage) []domain.Question {
	l := p.logger()
	questions := []domain.Question{}

	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		l.Warn("AI response did not contain a valid questions array. Using an empty list.")
		return questions
	}

	for i, item := range items {
		var rq rawQuestion
		if err := json.Unmarshal(item, &rq); err != nil {
			l.Warn("Skipping malformed question in AI response", zap.Int("index", i), zap.Error(err))
			continue
		}
		questions = append(questions, coerceQuestion(rq))
	}
	return questions
}

// coerceQuestion maps a provisional question onto the strict shape:
// options exist exactly for multiple-choice questions.
func coerceQuestion(rq rawQuestion) domain.Question {
	q := domain.Question{
		Question:    strings.TrimSpace(string(rq.Question)),
		Answer:      strings.TrimSpace(string(rq.Answer)),
		Explanation: strings.TrimSpace(string(rq.Explanation)),
	}
	for _, o := range rq.Options {
		q.Options = append(q.Options, strings.TrimSpace(string(o)))
	}

	q.Type = normalizeType(rq.Type)
	if q.Type == "" {
		q.Type = domain.QuestionTypeShortAnswer
		if len(q.Options) > 0 {
			q.Type = domain.QuestionTypeMultipleChoice
		}
	}
	if q.Type == domain.QuestionTypeMultipleChoice && len(q.Options) == 0 {
		q.Type = domain.QuestionTypeShortAnswer
	}
	if q.Type == domain.QuestionTypeShortAnswer {
		q.Options = nil
	}
	return q
}

func normalizeType(t string) domain.QuestionType {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(t))
	switch key {
	case "multiplechoice", "mc", "choice":
		return domain.QuestionTypeMultipleChoice
	case "shortanswer", "short", "sa":
		return domain.QuestionTypeShortAnswer
	}
	return ""
}
