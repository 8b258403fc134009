package quiz

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const NoticeNoQuestions = "No valid questions found"

type NoticeKind string

const (
	NoticeInfo      NoticeKind = "info"
	NoticeCorrect   NoticeKind = "correct"
	NoticeIncorrect NoticeKind = "incorrect"
	NoticeError     NoticeKind = "error"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Option is one labeled answer as a surface displays it, e.g. "B) Paris".
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
	Label  string `json:"label"`
}

type QuestionView struct {
	SessionID string    `json:"session_id"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Text      string    `json:"text"`
	Group     string    `json:"group"`
	Options   [4]Option `json:"options"`
	// Answered surfaces disable option selection.
	Answered bool `json:"answered"`
}

type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
}

// Result is the outcome of one CheckAnswer call.
type Result struct {
	Status        string `json:"status"`
	Selected      string `json:"selected,omitempty"`
	CorrectLetter string `json:"correct_letter,omitempty"`
	CorrectText   string `json:"correct_text,omitempty"`
	AllAnswered   bool   `json:"all_answered"`
}

// Surface renders engine output. Calls arrive in the order of the state changes they
// describe, one at a time, apart from ShowElapsed which comes from the timer. A surface must
// not call back into the engine from a render.
type Surface interface {
	ShowQuestion(view QuestionView)
	ShowScore(score Score)
	ShowGroups(groups []string)
	Notify(notice Notice)
	ShowElapsed(display string)
}

// State is a point-in-time copy of the engine for serialization.
type State struct {
	SessionID    string        `json:"session_id"`
	Loaded       int           `json:"loaded"`
	Active       int           `json:"active"`
	Group        string        `json:"group"`
	Groups       []string      `json:"groups"`
	Question     *QuestionView `json:"question,omitempty"`
	Score        Score         `json:"score"`
	Elapsed      string        `json:"elapsed"`
	TimerRunning bool          `json:"timer_running"`
}

// Engine owns the loaded questions, the active (possibly filtered) set, the position in it,
// the score counters and the answer timer.
type Engine struct {
	// renderMu is held from a state change through its renders. mu guards the fields below
	// and is never held across a surface call.
	renderMu sync.Mutex
	mu       sync.Mutex
	surface  Surface
	logger   logrus.FieldLogger
	timer    *Timer

	all       []*Question
	active    []*Question
	group     string
	groups    []string
	index     int
	correct   int
	incorrect int
	sessionID string
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	logger    logrus.FieldLogger
	timerOpts []TimerOption
}

func WithLogger(logger logrus.FieldLogger) EngineOption {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithTimerOptions configures the engine's answer timer.
func WithTimerOptions(opts ...TimerOption) EngineOption {
	return func(cfg *engineConfig) {
		cfg.timerOpts = append(cfg.timerOpts, opts...)
	}
}

// NewEngine builds an engine with nothing loaded. surface may be nil to run headless.
func NewEngine(surface Surface, opts ...EngineOption) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	e := &Engine{
		surface: surface,
		logger:  cfg.logger,
		group:   AllGroups,
		groups:  []string{AllGroups},
		index:   -1,
	}
	e.timer = NewTimer(func(display string) {
		if e.surface != nil {
			e.surface.ShowElapsed(display)
		}
	}, cfg.timerOpts...)
	return e
}

// Load replaces all state with questions and shows the first one. It returns the installed
// set. An empty set leaves the engine inactive and reports NoticeNoQuestions.
func (e *Engine) Load(questions []*Question) []*Question {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	for _, question := range questions {
		question.Answered = false
	}
	e.all = questions
	e.active = questions
	e.group = AllGroups
	e.groups = GroupIndex(questions)
	e.index = -1
	e.correct = 0
	e.incorrect = 0
	e.sessionID = uuid.NewString()
	groups := append([]string(nil), e.groups...)
	score := e.scoreLocked()
	empty := len(questions) == 0
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"questions": len(questions),
		"groups":    len(groups) - 1,
	}).Info("questions loaded")

	e.timer.Reset()
	e.renderGroups(groups)
	e.renderScore(score)
	if empty {
		e.notify(NoticeInfo, NoticeNoQuestions)
		return questions
	}

	e.show(0)
	return questions
}

// ApplyGroupFilter plays only the questions of group, or all of them for AllGroups.
// Counters and position restart; answered marks are kept.
func (e *Engine) ApplyGroupFilter(group string) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	if e.all == nil {
		e.mu.Unlock()
		return
	}
	e.active = FilterByGroup(e.all, group)
	e.group = group
	e.index = -1
	e.correct = 0
	e.incorrect = 0
	e.sessionID = uuid.NewString()
	score := e.scoreLocked()
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"group":  group,
		"active": score.Total,
	}).Debug("group filter applied")

	e.renderScore(score)
	if score.Total == 0 {
		e.timer.Reset()
		e.notify(NoticeInfo, fmt.Sprintf("No questions in group %q", group))
		return
	}
	e.show(0)
}

// Show displays the active question at index. Out-of-range indexes are ignored. Showing
// index 0 restarts the timer.
func (e *Engine) Show(index int) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	e.show(index)
}

func (e *Engine) Next() {
	e.step(1)
}

func (e *Engine) Previous() {
	e.step(-1)
}

func (e *Engine) step(delta int) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	target := e.index + delta
	if e.index < 0 || target < 0 || target >= len(e.active) {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.show(target)
}

// show requires renderMu.
func (e *Engine) show(index int) {
	e.mu.Lock()
	if index < 0 || index >= len(e.active) {
		e.mu.Unlock()
		return
	}
	e.index = index
	view := e.viewLocked()
	score := e.scoreLocked()
	e.mu.Unlock()

	if e.surface != nil {
		e.surface.ShowQuestion(view)
	}
	e.renderScore(score)
	if index == 0 {
		e.timer.Start()
	}
}

// CheckAnswer scores selected against correct for the current question. Every call counts,
// even for a question that was already answered.
func (e *Engine) CheckAnswer(selected, correct string) Result {
	return e.check(selected, func(*Question) (string, string) {
		return correct, ""
	})
}

// Answer checks a surface-supplied letter against the current question.
func (e *Engine) Answer(selected string) Result {
	return e.answer(selected, func(*Question) string { return "" })
}

// AnswerOnce is Answer for surfaces that stop accepting answers once a question is answered.
// An answered question yields StatusAlreadyAnswered and changes nothing.
func (e *Engine) AnswerOnce(selected string) Result {
	return e.answer(selected, func(question *Question) string {
		if question.Answered {
			return StatusAlreadyAnswered
		}
		return ""
	})
}

// AnswerAt is AnswerOnce against the question a surface displayed, identified by the session
// and index of its QuestionView. If the engine has moved since, it yields StatusStale.
func (e *Engine) AnswerAt(sessionID string, index int, selected string) Result {
	return e.answer(selected, func(question *Question) string {
		if e.sessionID != sessionID || e.index != index {
			return StatusStale
		}
		if question.Answered {
			return StatusAlreadyAnswered
		}
		return ""
	})
}

// answer normalizes selected and scores it against the current question's correct letter
// unless refuse, called under the state lock, names a status to return instead.
func (e *Engine) answer(selected string, refuse func(*Question) string) Result {
	letter := NormalizeLetter(selected)
	if letter == "" {
		return Result{Status: StatusInvalidLetter, Selected: selected}
	}
	return e.check(letter, func(question *Question) (string, string) {
		return question.CorrectAnswer, refuse(question)
	})
}

// check scores selected against the letter pick returns for the current question. pick runs
// under the state lock; a non-empty refusal status is returned without any change.
func (e *Engine) check(selected string, pick func(*Question) (correct, refused string)) Result {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	if e.index < 0 || e.index >= len(e.active) {
		e.mu.Unlock()
		return Result{Status: StatusNoQuestion}
	}

	question := e.active[e.index]
	correct, refused := pick(question)
	if refused != "" {
		e.mu.Unlock()
		return Result{Status: refused, Selected: selected}
	}

	result := Result{
		Selected:      selected,
		CorrectLetter: correct,
		CorrectText:   question.OptionText(correct),
	}
	if selected == correct {
		e.correct++
		result.Status = StatusCorrect
	} else {
		e.incorrect++
		result.Status = StatusIncorrect
	}
	question.Answered = true
	result.AllAnswered = allAnswered(e.active)
	view := e.viewLocked()
	score := e.scoreLocked()
	e.mu.Unlock()

	if result.AllAnswered {
		e.timer.Stop()
	}

	if e.surface != nil {
		e.surface.ShowQuestion(view)
	}
	if result.Status == StatusCorrect {
		e.notify(NoticeCorrect, "Correct!")
	} else {
		e.notify(NoticeIncorrect, fmt.Sprintf("Incorrect \u2014 correct answer was %s) %s", correct, result.CorrectText))
	}
	e.renderScore(score)

	if result.AllAnswered {
		e.notify(NoticeInfo, fmt.Sprintf(
			"All questions answered: %d correct, %d incorrect in %s",
			score.Correct, score.Incorrect, FormatElapsed(e.timer.Elapsed()),
		))
	}
	return result
}

// ResetScore zeroes both counters without touching position or answered marks.
func (e *Engine) ResetScore() {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	e.correct = 0
	e.incorrect = 0
	score := e.scoreLocked()
	e.mu.Unlock()

	e.renderScore(score)
}

// Close stops the answer timer. The engine stays usable.
func (e *Engine) Close() {
	e.timer.Stop()
}

// Notify forwards a notice from outside the engine, e.g. a failed load.
func (e *Engine) Notify(kind NoticeKind, message string) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	e.notify(kind, message)
}

func (e *Engine) AllQuestions() []*Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Question(nil), e.all...)
}

func (e *Engine) ActiveQuestions() []*Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Question(nil), e.active...)
}

// CurrentIndex is -1 while no question is active.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

func (e *Engine) Current() *Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index < 0 || e.index >= len(e.active) {
		return nil
	}
	return e.active[e.index]
}

func (e *Engine) Score() Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoreLocked()
}

func (e *Engine) Groups() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.groups...)
}

func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

func (e *Engine) Elapsed() time.Duration {
	return e.timer.Elapsed()
}

func (e *Engine) TimerRunning() bool {
	return e.timer.Running()
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	state := State{
		SessionID: e.sessionID,
		Loaded:    len(e.all),
		Active:    len(e.active),
		Group:     e.group,
		Groups:    append([]string(nil), e.groups...),
		Score:     e.scoreLocked(),
	}
	if e.index >= 0 && e.index < len(e.active) {
		view := e.viewLocked()
		state.Question = &view
	}
	e.mu.Unlock()

	state.Elapsed = FormatElapsed(e.timer.Elapsed())
	state.TimerRunning = e.timer.Running()
	return state
}

func (e *Engine) viewLocked() QuestionView {
	question := e.active[e.index]
	view := QuestionView{
		SessionID: e.sessionID,
		Index:     e.index,
		Total:     len(e.active),
		Text:      question.Text,
		Group:     question.Group,
		Answered:  question.Answered,
	}
	for idx, letter := range Letters {
		view.Options[idx] = Option{
			Letter: letter,
			Text:   question.Options[idx],
			Label:  letter + ") " + question.Options[idx],
		}
	}
	return view
}

func (e *Engine) scoreLocked() Score {
	return Score{
		Correct:   e.correct,
		Incorrect: e.incorrect,
		Total:     len(e.active),
	}
}

func (e *Engine) renderScore(score Score) {
	if e.surface != nil {
		e.surface.ShowScore(score)
	}
}

func (e *Engine) renderGroups(groups []string) {
	if e.surface != nil {
		e.surface.ShowGroups(groups)
	}
}

func (e *Engine) notify(kind NoticeKind, message string) {
	if e.surface != nil {
		e.surface.Notify(Notice{Kind: kind, Message: message})
	}
}

func allAnswered(questions []*Question) bool {
	for _, question := range questions {
		if !question.Answered {
			return false
		}
	}
	return len(questions) > 0
}
