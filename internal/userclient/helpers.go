package userclient

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"csv-quiz/internal/quiz"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  state")
	fmt.Fprintln(out, "  load <server path or url>")
	fmt.Fprintln(out, "  upload <local csv file>")
	fmt.Fprintln(out, "  a | b | c | d")
	fmt.Fprintln(out, "  next | prev | show <n>")
	fmt.Fprintln(out, "  group <label>")
	fmt.Fprintln(out, "  reset")
	fmt.Fprintln(out, "  exit")
}

// showState adapts a state-returning call so it can be printed in one line.
func showState(out io.Writer) func(quiz.State, error) error {
	return func(state quiz.State, err error) error {
		if err != nil {
			return err
		}
		printState(out, state)
		return nil
	}
}

func printState(out io.Writer, state quiz.State) {
	fmt.Fprintf(out, "Groups: %s (playing %s)\n", strings.Join(state.Groups, ", "), state.Group)
	fmt.Fprintf(out, "Score: %d correct, %d incorrect (%d questions)  time %s\n",
		state.Score.Correct, state.Score.Incorrect, state.Score.Total, state.Elapsed)

	if state.Question == nil {
		fmt.Fprintln(out, "No question loaded.")
		return
	}
	view := state.Question
	fmt.Fprintf(out, "\nQ%d/%d [%s]: %s\n\n", view.Index+1, view.Total, view.Group, view.Text)
	for _, option := range view.Options {
		fmt.Fprintln(out, option.Label)
	}
	if view.Answered {
		fmt.Fprintln(out, "(answered)")
	}
}

func printLoaded(out io.Writer, loaded LoadResult) {
	if loaded.Loaded == 0 {
		fmt.Fprintln(out, quiz.NoticeNoQuestions)
		return
	}
	fmt.Fprintf(out, "Loaded %d questions. Groups: %s\n", loaded.Loaded, strings.Join(loaded.Groups, ", "))
}

func printResult(out io.Writer, answer AnswerResult) {
	if answer.Result.Status == quiz.StatusCorrect {
		fmt.Fprintln(out, "Correct!")
	} else {
		fmt.Fprintf(out, "Incorrect \u2014 correct answer was %s) %s\n", answer.Result.CorrectLetter, answer.Result.CorrectText)
	}
	fmt.Fprintf(out, "Score: %d correct, %d incorrect (%d questions)\n",
		answer.Score.Correct, answer.Score.Incorrect, answer.Score.Total)
	if answer.Result.AllAnswered {
		fmt.Fprintln(out, "All questions answered.")
	}
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	return err
}
