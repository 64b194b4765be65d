package service

import (
	"fmt"
	"strings"

	"study-quiz/internal/domain"
)

// subjectSteering nudges topic-only quizzes for the subjects offered on the
// home page toward a wider spread of topics.
var subjectSteering = map[string]string{
	"데이터베이스":         "Spread the questions over relational modeling, normalization, SQL, transactions and concurrency control, indexing and recovery.",
	"프로그래밍 언어":       "Mix questions on C, Java and Python syntax, output tracing of short code snippets, operators, and object-oriented concepts.",
	"시스템 설계":         "Cover requirements analysis, UML diagrams, design patterns, architecture styles, and interface design.",
	"정보처리기사 시스템 설계":  "Cover requirements analysis, UML diagrams, design patterns, architecture styles, and interface design, the way the national certification exam does.",
	"소프트웨어 공학":       "Cover development life cycles, testing techniques, software metrics, configuration management, and project management.",
	"정보시스템 관리":       "Cover networking, security threats and countermeasures, operating systems, and IT infrastructure operations.",
}

// PromptBuilder composes the instruction sent to the model. It is a pure
// function of the request and its configuration.
type PromptBuilder struct {
	Language        string
	SingleTopicPool int
}

// RequestedCount returns how many questions to ask the model for. A
// topic-only request for one question asks for a pool to pick from.
func (b PromptBuilder) RequestedCount(req domain.QuizRequest) int {
	if req.Mode == domain.ModeTopicOnly && req.NumQuestions == 1 && b.SingleTopicPool > 1 {
		return b.SingleTopicPool
	}
	return req.NumQuestions
}

func questionTypeDescription(t domain.QuestionType) string {
	switch t {
	case domain.QuestionTypeMultipleChoice:
		return "multiple-choice questions, each with exactly 4 options"
	case domain.QuestionTypeShortAnswer:
		return "short-answer questions"
	default:
		return "any mix of multiple-choice (4 options) and short-answer questions"
	}
}

// Build returns the full prompt and the question count it asks for.
func (b PromptBuilder) Build(req domain.QuizRequest) (string, int) {
	n := b.RequestedCount(req)
	language := b.Language
	if language == "" {
		language = "Korean"
	}

	var sb strings.Builder
	step := 1

	if req.Mode == domain.ModeUserInput {
		fmt.Fprintf(&sb, "You are a study assistant that summarizes learned content and writes quiz questions with explanations in %s.\n", language)
		fmt.Fprintf(&sb, "Subject: %q\n", req.Subject)
		fmt.Fprintf(&sb, "Learned content: %q\n\n", req.LearnedContent)
		sb.WriteString("Based on the learned content above, do the following:\n")
		fmt.Fprintf(&sb, "%d. Summarize the content concisely in %s (1-2 sentences).\n", step, language)
		step++
	} else {
		fmt.Fprintf(&sb, "You are a study assistant that writes quiz questions with explanations in %s for a given subject.\n", language)
		fmt.Fprintf(&sb, "Subject: %q", req.Subject)
		if req.SpecificTopic != "" {
			fmt.Fprintf(&sb, " (in the style of %s)", req.SpecificTopic)
		}
		sb.WriteString("\n")
		if hint, ok := subjectSteering[req.Subject]; ok {
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
		sb.WriteString("\nFor the subject above, do the following (do not write a summary):\n")
	}

	fmt.Fprintf(&sb, "%d. Write %d questions in %s that satisfy these rules:\n", step, n, language)
	fmt.Fprintf(&sb, "   - Question type: %s.\n", questionTypeDescription(req.QuestionType))
	sb.WriteString("   - Every question has a clear answer and a short explanation of why it is right.\n")
	sb.WriteString("   - Each question covers a different point.\n")
	sb.WriteString("\n")
	sb.WriteString(outputFormat(req.Mode))

	return sb.String(), n
}

func outputFormat(mode domain.Mode) string {
	summaryHint := "Put the summary here."
	if mode == domain.ModeTopicOnly {
		summaryHint = "Leave this as an empty string; no summary is needed."
	}
	return `The final reply must follow exactly this JSON format and contain no other text:
{
  "summary": "` + summaryHint + `",
  "questions": [
    {
      "id": 1,
      "type": "multipleChoice",
      "question": "Question text.",
      "options": ["option 1", "option 2", "option 3", "correct option"],
      "answer": "The answer. For multipleChoice it must equal one of the options.",
      "explanation": "Short explanation of the answer."
    }
  ]
}
Use "shortAnswer" as the type for short-answer questions and omit "options" for them.
Repeat the question object once per requested question.
`
}
