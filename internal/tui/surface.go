package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"csv-quiz/internal/quiz"
)

type (
	questionMsg struct{ view quiz.QuestionView }
	scoreMsg    struct{ score quiz.Score }
	groupsMsg   struct{ groups []string }
	noticeMsg   struct{ notice quiz.Notice }
	elapsedMsg  struct{ display string }
	dialogMsg   struct{ err error }
)

// Surface turns engine renders into tea messages. Until a program is bound, renders are
// discarded.
type Surface struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewSurface() *Surface {
	return &Surface{}
}

// Bind routes renders to send, usually (*tea.Program).Send.
func (s *Surface) Bind(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

func (s *Surface) post(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (s *Surface) ShowQuestion(view quiz.QuestionView) { s.post(questionMsg{view: view}) }
func (s *Surface) ShowScore(score quiz.Score)          { s.post(scoreMsg{score: score}) }
func (s *Surface) ShowGroups(groups []string)          { s.post(groupsMsg{groups: groups}) }
func (s *Surface) Notify(notice quiz.Notice)           { s.post(noticeMsg{notice: notice}) }
func (s *Surface) ShowElapsed(display string)          { s.post(elapsedMsg{display: display}) }

// inputPicker hands the path typed into the model's text input to a waiting dialog.
type inputPicker struct {
	paths chan string
}

func newInputPicker() *inputPicker {
	return &inputPicker{paths: make(chan string, 1)}
}

func (p *inputPicker) PickFile(ctx context.Context, _ string, _ []string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case path := <-p.paths:
		return path, nil
	}
}

// submit never blocks; a second submission before the dialog reads is dropped.
func (p *inputPicker) submit(path string) {
	select {
	case p.paths <- path:
	default:
	}
}
