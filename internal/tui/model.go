package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"csv-quiz/internal/loader"
	"csv-quiz/internal/quiz"
)

type Config struct {
	File         string
	DialogTitle  string
	TickInterval time.Duration
	Logger       logrus.FieldLogger
}

// Model is the bubbletea model. Engine calls run inside commands so the event loop never
// waits on the engine while the engine posts renders back to it.
type Model struct {
	ctx    context.Context
	engine *quiz.Engine
	files  *loader.Loader
	dialog *quiz.Dialog
	picker *inputPicker
	file   string

	input   textinput.Model
	picking bool

	question *quiz.QuestionView
	score    quiz.Score
	groups   []string
	group    string
	notice   *quiz.Notice
	elapsed  string
}

// NewModel builds the model and the engine behind it. The returned surface must be bound
// to the running program.
func NewModel(ctx context.Context, cfg Config) (*Model, *Surface) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	surface := NewSurface()
	engine := quiz.NewEngine(surface,
		quiz.WithLogger(logger),
		quiz.WithTimerOptions(quiz.WithTickInterval(cfg.TickInterval)),
	)
	files := loader.New(engine, logger)
	picker := newInputPicker()

	input := textinput.New()
	input.Placeholder = "path/to/questions.csv"
	input.CharLimit = 512
	input.Width = 60

	m := &Model{
		ctx:    ctx,
		engine: engine,
		files:  files,
		picker: picker,
		file:   cfg.File,
		dialog: &quiz.Dialog{
			Picker:     picker,
			Open:       files.OpenFile,
			Title:      cfg.DialogTitle,
			Extensions: loader.Extensions,
			Logger:     logger,
		},
		input:   input,
		groups:  []string{quiz.AllGroups},
		group:   quiz.AllGroups,
		elapsed: quiz.FormatElapsed(0),
	}
	return m, surface
}

func (m *Model) Init() tea.Cmd {
	if m.file == "" {
		return nil
	}
	path := m.file
	return m.run(func() { _ = m.files.OpenFile(m.ctx, path) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		view := msg.view
		m.question = &view
	case scoreMsg:
		m.score = msg.score
	case groupsMsg:
		m.groups = msg.groups
		m.group = quiz.AllGroups
	case noticeMsg:
		notice := msg.notice
		m.notice = &notice
	case elapsedMsg:
		m.elapsed = msg.display
	case dialogMsg:
		m.picking = false
		m.input.Blur()
	case tea.KeyMsg:
		if m.picking {
			return m.updatePicking(msg)
		}
		return m.updatePlaying(msg)
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "a", "b", "c", "d", "A", "B", "C", "D":
		if m.question == nil || m.question.Answered {
			return m, nil
		}
		sessionID, index := m.question.SessionID, m.question.Index
		return m, m.run(func() { m.engine.AnswerAt(sessionID, index, key) })
	case "right", "n":
		return m, m.run(m.engine.Next)
	case "left", "p":
		return m, m.run(m.engine.Previous)
	case "g":
		next := nextGroup(m.groups, m.group)
		if next == "" {
			return m, nil
		}
		m.group = next
		return m, m.run(func() { m.engine.ApplyGroupFilter(next) })
	case "r":
		return m, m.run(m.engine.ResetScore)
	case "o":
		if m.dialog.Outstanding() {
			return m, nil
		}
		m.picking = true
		m.input.Reset()
		return m, tea.Batch(m.input.Focus(), m.requestFile())
	}
	return m, nil
}

func (m *Model) updatePicking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.picker.submit("")
		m.picking = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.picker.submit(m.input.Value())
		m.picking = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) requestFile() tea.Cmd {
	return func() tea.Msg {
		return dialogMsg{err: m.dialog.RequestFile(m.ctx)}
	}
}

func (m *Model) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// nextGroup cycles through groups, wrapping back to the first label.
func nextGroup(groups []string, current string) string {
	if len(groups) < 2 {
		return ""
	}
	for idx, group := range groups {
		if group == current {
			return groups[(idx+1)%len(groups)]
		}
	}
	return groups[0]
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styleHeader.Render("csv-quiz"))
	b.WriteString(styleSubtle.Render(fmt.Sprintf("  %s  |  %d correct, %d incorrect of %d",
		m.elapsed, m.score.Correct, m.score.Incorrect, m.score.Total)))
	b.WriteString("\n")
	b.WriteString(m.viewGroups())
	b.WriteString("\n\n")

	if m.picking {
		title := m.dialog.Title
		if title == "" {
			title = quiz.DefaultDialogTitle
		}
		b.WriteString(styleBox.Render(title + " (" + strings.Join(m.dialog.Extensions, " ") + ")\n" + m.input.View()))
		b.WriteString("\n")
		b.WriteString(styleSubtle.Render("enter: open  esc: cancel"))
		return b.String()
	}

	b.WriteString(m.viewQuestion())
	b.WriteString("\n")
	if m.notice != nil {
		b.WriteString(noticeStyle(m.notice.Kind).Render(m.notice.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render("a-d: answer  ←/→: move  g: group  r: reset score  o: open  q: quit"))
	return b.String()
}

func (m *Model) viewGroups() string {
	labels := make([]string, 0, len(m.groups))
	for _, group := range m.groups {
		if group == m.group {
			labels = append(labels, styleActive.Render("["+group+"]"))
			continue
		}
		labels = append(labels, group)
	}
	return "Groups: " + strings.Join(labels, " ")
}

func (m *Model) viewQuestion() string {
	if m.question == nil {
		return styleSubtle.Render("No questions loaded. Press o to open a file.") + "\n"
	}

	view := m.question
	var b strings.Builder
	b.WriteString(styleSubtle.Render(fmt.Sprintf("Q%d/%d  %s", view.Index+1, view.Total, view.Group)))
	b.WriteString("\n")
	b.WriteString(styleQuestion.Render(view.Text))
	b.WriteString("\n\n")

	style := styleOption
	if view.Answered {
		style = styleAnswered
	}
	for _, option := range view.Options {
		b.WriteString(style.Render(option.Label))
		b.WriteString("\n")
	}
	return b.String()
}

// Run plays the quiz full screen until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	model, surface := NewModel(ctx, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	surface.Bind(program.Send)

	_, err := program.Run()
	model.engine.Close()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
