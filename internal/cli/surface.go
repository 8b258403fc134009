package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"csv-quiz/internal/quiz"
)

// Surface prints engine output as plain text. Elapsed-time ticks are remembered rather than
// printed so they do not interleave with the prompt.
type Surface struct {
	mu      sync.Mutex
	out     io.Writer
	elapsed string
}

func NewSurface(out io.Writer) *Surface {
	return &Surface{out: out, elapsed: quiz.FormatElapsed(0)}
}

func (s *Surface) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Surface) ShowQuestion(view quiz.QuestionView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Q%d/%d [%s]: %s\n\n", view.Index+1, view.Total, view.Group, view.Text)
	for _, option := range view.Options {
		fmt.Fprintln(s.out, option.Label)
	}
	if view.Answered {
		fmt.Fprintln(s.out, "(answered)")
	}
}

func (s *Surface) ShowScore(score quiz.Score) {
	s.Printf("Score: %d correct, %d incorrect (%d questions)\n", score.Correct, score.Incorrect, score.Total)
}

func (s *Surface) ShowGroups(groups []string) {
	printGroups(s, groups)
}

func (s *Surface) Notify(notice quiz.Notice) {
	s.Printf("%s\n", notice.Message)
}

func (s *Surface) ShowElapsed(display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = display
}

// Elapsed is the last display the timer reported.
func (s *Surface) Elapsed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func printGroups(s *Surface, groups []string) {
	s.Printf("Groups: %s\n", strings.Join(groups, ", "))
}

// promptPicker asks for the file path on the command input.
type promptPicker struct {
	reader  *bufio.Reader
	surface *Surface
}

func newPromptPicker(reader *bufio.Reader, surface *Surface) *promptPicker {
	return &promptPicker{reader: reader, surface: surface}
}

func (p *promptPicker) PickFile(_ context.Context, title string, extensions []string) (string, error) {
	p.surface.Printf("%s (%s), empty to cancel: ", title, strings.Join(extensions, " "))
	line, err := p.reader.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
