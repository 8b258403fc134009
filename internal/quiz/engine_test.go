package quiz

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSurface struct {
	mu        sync.Mutex
	questions []QuestionView
	scores    []Score
	groups    [][]string
	notices   []Notice
	elapsed   []string
}

func (s *recordingSurface) ShowQuestion(view QuestionView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, view)
}

func (s *recordingSurface) ShowScore(score Score) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, score)
}

func (s *recordingSurface) ShowGroups(groups []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, groups)
}

func (s *recordingSurface) Notify(notice Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notice)
}

func (s *recordingSurface) ShowElapsed(display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = append(s.elapsed, display)
}

func (s *recordingSurface) lastQuestion() QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[len(s.questions)-1]
}

func (s *recordingSurface) lastNotice() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		return Notice{}
	}
	return s.notices[len(s.notices)-1]
}

func (s *recordingSurface) noticeContaining(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notice := range s.notices {
		if strings.Contains(notice.Message, substr) {
			return true
		}
	}
	return false
}

func newTestEngine(surface Surface) (*Engine, *fakeClock) {
	clock := newFakeClock()
	ticker := &manualTicker{}
	engine := NewEngine(surface,
		WithLogger(quietLogger()),
		WithTimerOptions(WithClock(clock.Now), WithTicker(ticker.Ticker)),
	)
	return engine, clock
}

func sampleQuestions() []*Question {
	return []*Question{
		{Text: "What is 2+2?", Options: [4]string{"1", "2", "3", "4"}, CorrectAnswer: "D", Group: "Math"},
		{Text: "Capital of Italy?", Options: [4]string{"Rome", "Paris", "Berlin", "Madrid"}, CorrectAnswer: "A", Group: "Geography"},
		{Text: "What is 3*3?", Options: [4]string{"6", "9", "12", "3"}, CorrectAnswer: "B", Group: "Math"},
	}
}

func TestEngineLoadShowsFirstQuestionAndStartsTimer(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)

	loaded := engine.Load(sampleQuestions())
	if len(loaded) != 3 {
		t.Fatalf("Load returned %d questions, want 3", len(loaded))
	}
	if engine.CurrentIndex() != 0 {
		t.Fatalf("current index = %d, want 0", engine.CurrentIndex())
	}
	if !engine.TimerRunning() {
		t.Fatalf("timer should run after a non-empty load")
	}
	if engine.SessionID() == "" {
		t.Fatalf("load should assign a session id")
	}

	view := surface.lastQuestion()
	if view.Text != "What is 2+2?" || view.Total != 3 {
		t.Fatalf("unexpected view: %+v", view)
	}
	wantLabels := []string{"A) 1", "B) 2", "C) 3", "D) 4"}
	for idx, want := range wantLabels {
		if view.Options[idx].Label != want {
			t.Fatalf("option %d label = %q, want %q", idx, view.Options[idx].Label, want)
		}
	}

	groups := engine.Groups()
	if strings.Join(groups, ",") != "All,Math,Geography" {
		t.Fatalf("groups = %v", groups)
	}
}

func TestEngineLoadEmptySetNotifies(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)

	engine.Load(nil)

	if engine.CurrentIndex() != -1 {
		t.Fatalf("empty load must leave index inactive, got %d", engine.CurrentIndex())
	}
	if engine.TimerRunning() {
		t.Fatalf("empty load must not start the timer")
	}
	if !surface.noticeContaining(NoticeNoQuestions) {
		t.Fatalf("expected %q notice, got %+v", NoticeNoQuestions, surface.notices)
	}
}

func TestEngineLoadClearsPreviousState(t *testing.T) {
	engine, _ := newTestEngine(nil)
	questions := sampleQuestions()
	engine.Load(questions)
	engine.Next()
	engine.Answer("A")

	engine.Load(questions)

	if engine.CurrentIndex() != 0 {
		t.Fatalf("index = %d after reload, want 0", engine.CurrentIndex())
	}
	if score := engine.Score(); score.Correct != 0 || score.Incorrect != 0 {
		t.Fatalf("score not reset: %+v", score)
	}
	for idx, question := range engine.AllQuestions() {
		if question.Answered {
			t.Fatalf("question %d still answered after reload", idx)
		}
	}
}

func TestEngineShowOutOfRangeIsNoop(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())
	engine.Next()

	shown := len(surface.questions)
	engine.Show(-1)
	engine.Show(len(engine.ActiveQuestions()))

	if engine.CurrentIndex() != 1 {
		t.Fatalf("index changed to %d", engine.CurrentIndex())
	}
	if len(surface.questions) != shown {
		t.Fatalf("out-of-range show rendered a question")
	}
}

func TestEngineNavigationClamps(t *testing.T) {
	engine, _ := newTestEngine(nil)

	engine.Next()
	engine.Previous()
	if engine.CurrentIndex() != -1 {
		t.Fatalf("navigation before load changed index to %d", engine.CurrentIndex())
	}

	engine.Load(sampleQuestions())
	engine.Previous()
	if engine.CurrentIndex() != 0 {
		t.Fatalf("previous at start moved to %d", engine.CurrentIndex())
	}

	engine.Next()
	engine.Next()
	engine.Next()
	if engine.CurrentIndex() != 2 {
		t.Fatalf("next past the end moved to %d", engine.CurrentIndex())
	}

	engine.Previous()
	if engine.CurrentIndex() != 1 {
		t.Fatalf("previous moved to %d, want 1", engine.CurrentIndex())
	}
}

func TestEngineCheckAnswerScoresAndNotifies(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())

	result := engine.CheckAnswer("D", "D")
	if result.Status != StatusCorrect {
		t.Fatalf("status = %q, want correct", result.Status)
	}
	if surface.lastNotice().Message != "Correct!" {
		t.Fatalf("notice = %+v", surface.lastNotice())
	}
	if !surface.lastQuestion().Answered {
		t.Fatalf("view should mark the question answered")
	}

	engine.Next()
	result = engine.CheckAnswer("B", "A")
	if result.Status != StatusIncorrect || result.CorrectText != "Rome" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := surface.lastNotice().Message; got != "Incorrect \u2014 correct answer was A) Rome" {
		t.Fatalf("notice = %q", got)
	}

	score := engine.Score()
	if score.Correct != 1 || score.Incorrect != 1 || score.Total != 3 {
		t.Fatalf("score = %+v", score)
	}
}

func TestEngineCheckAnswerCountsEveryCall(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())

	engine.CheckAnswer("A", "D")
	engine.CheckAnswer("D", "D")

	score := engine.Score()
	if score.Correct != 1 || score.Incorrect != 1 {
		t.Fatalf("score = %+v, want one of each", score)
	}

	answered := 0
	for _, question := range engine.ActiveQuestions() {
		if question.Answered {
			answered++
		}
	}
	if answered != 1 {
		t.Fatalf("answered marks = %d, want 1", answered)
	}
}

func TestEngineCheckAnswerWithoutQuestion(t *testing.T) {
	engine, _ := newTestEngine(nil)
	if result := engine.CheckAnswer("A", "A"); result.Status != StatusNoQuestion {
		t.Fatalf("status = %q, want %q", result.Status, StatusNoQuestion)
	}
	if score := engine.Score(); score.Correct != 0 {
		t.Fatalf("score changed without a question: %+v", score)
	}
}

func TestEngineAnswerNormalizesLetter(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())

	if result := engine.Answer("z"); result.Status != StatusInvalidLetter {
		t.Fatalf("status = %q, want invalid_letter", result.Status)
	}
	if result := engine.Answer(" d "); result.Status != StatusCorrect {
		t.Fatalf("status = %q, want correct", result.Status)
	}
}

func TestEngineTimerStopsWhenAllAnswered(t *testing.T) {
	surface := &recordingSurface{}
	engine, clock := newTestEngine(surface)
	questions := sampleQuestions()
	engine.Load(questions)

	for idx := 0; idx < len(questions)-1; idx++ {
		engine.Answer("A")
		engine.Next()
	}
	if !engine.TimerRunning() {
		t.Fatalf("timer stopped with one question left")
	}

	clock.Advance(75 * time.Second)
	result := engine.Answer("B")
	if !result.AllAnswered {
		t.Fatalf("expected AllAnswered on the last question")
	}
	if engine.TimerRunning() {
		t.Fatalf("timer still running after every question was answered")
	}
	if !surface.noticeContaining("in 01:15") {
		t.Fatalf("missing completion summary, got %+v", surface.notices)
	}

	clock.Advance(time.Minute)
	if engine.Elapsed() != 75*time.Second {
		t.Fatalf("elapsed kept moving after stop: %v", engine.Elapsed())
	}
}

func TestEngineGroupFilter(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())
	engine.Answer("D")
	engine.Next()

	engine.ApplyGroupFilter("Math")

	active := engine.ActiveQuestions()
	if len(active) != 2 || active[0].Text != "What is 2+2?" || active[1].Text != "What is 3*3?" {
		t.Fatalf("unexpected filtered set: %+v", active)
	}
	if engine.CurrentIndex() != 0 {
		t.Fatalf("filter should reset index, got %d", engine.CurrentIndex())
	}
	if score := engine.Score(); score.Correct != 0 || score.Incorrect != 0 || score.Total != 2 {
		t.Fatalf("filter should reset score: %+v", score)
	}
	if !active[0].Answered {
		t.Fatalf("filter must keep answered marks")
	}
	if !engine.TimerRunning() {
		t.Fatalf("filter should restart the timer")
	}

	engine.Next()
	engine.Answer("B")
	if engine.TimerRunning() {
		t.Fatalf("timer should stop once both math questions are answered")
	}
}

func TestEngineGroupFilterAllRestoresFullSet(t *testing.T) {
	engine, _ := newTestEngine(nil)
	questions := engine.Load(sampleQuestions())

	engine.ApplyGroupFilter("Geography")
	engine.ApplyGroupFilter(AllGroups)

	active := engine.ActiveQuestions()
	if len(active) != len(questions) {
		t.Fatalf("active length = %d, want %d", len(active), len(questions))
	}
	for idx := range active {
		if active[idx] != questions[idx] {
			t.Fatalf("order differs at %d", idx)
		}
	}
}

func TestEngineGroupFilterUnknownGroup(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())

	engine.ApplyGroupFilter("Music")

	if engine.CurrentIndex() != -1 || engine.TimerRunning() {
		t.Fatalf("empty filter should deactivate: index=%d running=%v", engine.CurrentIndex(), engine.TimerRunning())
	}
	if !surface.noticeContaining(`"Music"`) {
		t.Fatalf("expected notice naming the group, got %+v", surface.notices)
	}
}

func TestEngineGroupFilterBeforeLoadIsNoop(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)

	engine.ApplyGroupFilter("Math")
	if len(surface.scores) != 0 || engine.CurrentIndex() != -1 {
		t.Fatalf("filter before load should do nothing")
	}
}

func TestEngineResetScoreKeepsPosition(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())
	engine.Answer("D")
	engine.Next()

	engine.ResetScore()

	if score := engine.Score(); score.Correct != 0 || score.Incorrect != 0 {
		t.Fatalf("score = %+v", score)
	}
	if engine.CurrentIndex() != 1 {
		t.Fatalf("index = %d, want 1", engine.CurrentIndex())
	}
	if !engine.ActiveQuestions()[0].Answered {
		t.Fatalf("ResetScore must keep answered marks")
	}
}

func TestEngineSnapshot(t *testing.T) {
	engine, _ := newTestEngine(nil)

	state := engine.Snapshot()
	if state.Question != nil || state.Loaded != 0 || state.Elapsed != "00:00" {
		t.Fatalf("unexpected empty snapshot: %+v", state)
	}

	engine.Load(sampleQuestions())
	engine.ApplyGroupFilter("Geography")

	state = engine.Snapshot()
	if state.Loaded != 3 || state.Active != 1 || state.Group != "Geography" {
		t.Fatalf("unexpected snapshot: %+v", state)
	}
	if state.Question == nil || state.Question.Text != "Capital of Italy?" {
		t.Fatalf("snapshot question = %+v", state.Question)
	}
	if !state.TimerRunning || state.SessionID == "" {
		t.Fatalf("snapshot should carry timer and session: %+v", state)
	}
}

func TestEngineCloseStopsTimer(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())

	engine.Close()
	if engine.TimerRunning() {
		t.Fatalf("timer still running after Close")
	}
	engine.Next()
	if engine.CurrentIndex() != 1 {
		t.Fatalf("engine should stay usable after Close")
	}
}

// slowSurface pauses while rendering one index so a later transition can overtake it.
type slowSurface struct {
	recordingSurface
	slowIndex int
	delay     time.Duration
}

func (s *slowSurface) ShowQuestion(view QuestionView) {
	if view.Index == s.slowIndex {
		time.Sleep(s.delay)
	}
	s.recordingSurface.ShowQuestion(view)
}

func TestEngineRendersArriveInTransitionOrder(t *testing.T) {
	surface := &slowSurface{slowIndex: 1, delay: 20 * time.Millisecond}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.Next()
		}()
	}
	wg.Wait()

	if engine.CurrentIndex() != 2 {
		t.Fatalf("index = %d, want 2", engine.CurrentIndex())
	}
	if got := surface.lastQuestion().Index; got != engine.CurrentIndex() {
		t.Fatalf("last rendered index = %d, engine is at %d", got, engine.CurrentIndex())
	}
}

func TestEngineAnswerOnceRefusesAnsweredQuestion(t *testing.T) {
	surface := &recordingSurface{}
	engine, _ := newTestEngine(surface)
	engine.Load(sampleQuestions())

	if result := engine.AnswerOnce("d"); result.Status != StatusCorrect {
		t.Fatalf("first answer status = %q", result.Status)
	}
	renders := len(surface.questions)

	result := engine.AnswerOnce("a")
	if result.Status != StatusAlreadyAnswered {
		t.Fatalf("second answer status = %q, want %q", result.Status, StatusAlreadyAnswered)
	}
	if score := engine.Score(); score.Correct != 1 || score.Incorrect != 0 {
		t.Fatalf("score = %+v", score)
	}
	if len(surface.questions) != renders {
		t.Fatalf("refused answer should not render")
	}
}

func TestEngineAnswerOnceCountsOneOfConcurrentAnswers(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.AnswerOnce("a")
		}()
	}
	wg.Wait()

	if score := engine.Score(); score.Correct+score.Incorrect != 1 {
		t.Fatalf("score = %+v, want exactly one answer counted", score)
	}
}

func TestEngineAnswerAtRejectsStaleQuestion(t *testing.T) {
	engine, _ := newTestEngine(nil)
	engine.Load(sampleQuestions())
	oldSession := engine.SessionID()

	engine.Next()
	if result := engine.AnswerAt(oldSession, 0, "d"); result.Status != StatusStale {
		t.Fatalf("wrong index status = %q, want %q", result.Status, StatusStale)
	}

	engine.Load(sampleQuestions())
	engine.Next()
	if result := engine.AnswerAt(oldSession, 1, "a"); result.Status != StatusStale {
		t.Fatalf("old session status = %q, want %q", result.Status, StatusStale)
	}
	if score := engine.Score(); score.Correct+score.Incorrect != 0 {
		t.Fatalf("stale answers were scored: %+v", score)
	}

	if result := engine.AnswerAt(engine.SessionID(), 1, "a"); result.Status != StatusCorrect {
		t.Fatalf("current answer status = %q", result.Status)
	}
	if result := engine.AnswerAt(engine.SessionID(), 1, "a"); result.Status != StatusAlreadyAnswered {
		t.Fatalf("repeat answer status = %q", result.Status)
	}
}
