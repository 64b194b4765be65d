package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"study-quiz/internal/domain"
	"study-quiz/internal/view"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz and answer it",
	Example: `  quizcli generate --subject 데이터베이스 --content-file notes.txt
  quizcli generate --subject "시스템 설계" --mode topicOnly --num 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		mode, _ := cmd.Flags().GetString("mode")
		content, _ := cmd.Flags().GetString("content")
		contentFile, _ := cmd.Flags().GetString("content-file")
		num, _ := cmd.Flags().GetInt("num")
		qtype, _ := cmd.Flags().GetString("type")
		answer, _ := cmd.Flags().GetBool("answer")

		if contentFile != "" {
			data, err := os.ReadFile(contentFile)
			if err != nil {
				return fmt.Errorf("read content file: %w", err)
			}
			content = string(data)
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		state := view.New(subject)
		state.UpdateForm(view.Form{
			LearnedContent: content,
			Mode:           domain.Mode(mode),
			NumQuestions:   num,
			QuestionType:   domain.QuestionType(qtype),
		})

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "생성 중...")
		state.RequestQuiz(cmd.Context(), c)
		if state.Error != "" {
			return errors.New(state.Error)
		}

		printQuiz(out, state.Result, !answer)
		if !answer {
			return nil
		}
		return playQuiz(cmd.Context(), cmd.InOrStdin(), out, state)
	},
}

func init() {
	generateCmd.Flags().String("subject", "", "Study subject (required)")
	generateCmd.Flags().String("mode", string(domain.ModeUserInput), "userInput or topicOnly")
	generateCmd.Flags().String("content", "", "Study content for userInput mode")
	generateCmd.Flags().String("content-file", "", "Read study content from a file")
	generateCmd.Flags().Int("num", view.DefaultNumQuestions, "Number of questions")
	generateCmd.Flags().String("type", string(domain.QuestionTypeAny), "any, multipleChoice or shortAnswer")
	generateCmd.Flags().Bool("answer", true, "Answer the quiz interactively")
	_ = generateCmd.MarkFlagRequired("subject")
}

// printQuiz prints the summary. With reveal set it also lists every
// question with its answer, since nothing will be asked interactively.
func printQuiz(out io.Writer, result *domain.QuizResult, reveal bool) {
	if result == nil {
		return
	}
	if result.Summary != "" {
		fmt.Fprintf(out, "\n요약: %s\n", result.Summary)
	}
	if len(result.Questions) == 0 {
		fmt.Fprintln(out, "\n생성된 문제가 없습니다.")
		return
	}
	if !reveal {
		return
	}
	for i, q := range result.Questions {
		printQuestion(out, i+1, q)
		fmt.Fprintf(out, "    정답: %s\n", q.Answer)
		if q.Explanation != "" {
			fmt.Fprintf(out, "    해설: %s\n", q.Explanation)
		}
	}
}

func printQuestion(out io.Writer, n int, q domain.Question) {
	fmt.Fprintf(out, "\n%d. %s\n", n, q.Question)
	for j, opt := range q.Options {
		fmt.Fprintf(out, "   %d) %s\n", j+1, opt)
	}
}

// playQuiz asks every question, reveals the results and offers a retry
// of the same quiz until the user declines.
func playQuiz(ctx context.Context, in io.Reader, out io.Writer, state *view.State) error {
	if state.Result == nil || len(state.Result.Questions) == 0 {
		return nil
	}
	scanner := bufio.NewScanner(in)

	for {
		for i, q := range state.Result.Questions {
			if err := ctx.Err(); err != nil {
				return err
			}
			printQuestion(out, i+1, q)
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				break
			}
			state.RecordAnswer(q.ID, resolveAnswer(q, scanner.Text()))
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read answer: %w", err)
		}

		state.Submit()
		printOutcomes(out, state)

		fmt.Fprint(out, "\n다시 풀기 (같은 문제)? [y/N] ")
		if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
			return nil
		}
		state.Retry()
	}
}

// resolveAnswer maps an option number to the option text for multiple
// choice questions. Anything else is taken verbatim.
func resolveAnswer(q domain.Question, input string) string {
	input = strings.TrimSpace(input)
	if q.Type == domain.QuestionTypeMultipleChoice {
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
			return q.Options[n-1]
		}
	}
	return input
}

func printOutcomes(out io.Writer, state *view.State) {
	for i, o := range state.Outcomes() {
		mark := "O"
		if !o.Correct {
			mark = "X"
		}
		fmt.Fprintf(out, "\n[%s] %d. 정답: %s\n", mark, i+1, o.Question.Answer)
		if !o.Correct && o.Given != "" {
			fmt.Fprintf(out, "    당신의 답: %s\n", o.Given)
		}
		if o.Question.Explanation != "" {
			fmt.Fprintf(out, "    해설: %s\n", o.Question.Explanation)
		}
	}
	correct, total := state.Score()
	fmt.Fprintf(out, "\n%d / %d 정답\n", correct, total)
}
