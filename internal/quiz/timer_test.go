package quiz

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualTicker hands out tick channels the test drives by hand.
type manualTicker struct {
	mu      sync.Mutex
	ticks   []chan time.Time
	stopped int
}

func (m *manualTicker) Ticker(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time, 1)
	m.ticks = append(m.ticks, ch)
	return ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) Tick() {
	m.mu.Lock()
	ch := m.ticks[len(m.ticks)-1]
	m.mu.Unlock()
	ch <- time.Time{}
}

func (m *manualTicker) Started() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

func (m *manualTicker) Stopped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func newTestTimer(clock *fakeClock, ticker *manualTicker) (*Timer, chan string) {
	displays := make(chan string, 16)
	timer := NewTimer(func(display string) {
		displays <- display
	}, WithClock(clock.Now), WithTicker(ticker.Ticker))
	return timer, displays
}

func expectDisplay(t *testing.T, displays <-chan string, want string) {
	t.Helper()
	select {
	case got := <-displays:
		if got != want {
			t.Fatalf("display = %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for display %q", want)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "00:00"},
		{in: 999 * time.Millisecond, want: "00:00"},
		{in: 61 * time.Second, want: "01:01"},
		{in: 59*time.Minute + 59*time.Second + 999*time.Millisecond, want: "59:59"},
		{in: 125 * time.Minute, want: "125:00"},
		{in: -time.Second, want: "00:00"},
	}

	for _, tc := range tests {
		if got := FormatElapsed(tc.in); got != tc.want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimerTicksWhileRunning(t *testing.T) {
	clock := newFakeClock()
	ticker := &manualTicker{}
	timer, displays := newTestTimer(clock, ticker)

	timer.Start()
	expectDisplay(t, displays, "00:00")
	if !timer.Running() {
		t.Fatalf("timer should be running after Start")
	}

	clock.Advance(65*time.Second + 400*time.Millisecond)
	ticker.Tick()
	expectDisplay(t, displays, "01:05")

	if got := timer.Elapsed(); got != 65*time.Second+400*time.Millisecond {
		t.Fatalf("Elapsed = %v", got)
	}
}

func TestTimerStopIsIdempotentAndFreezes(t *testing.T) {
	clock := newFakeClock()
	ticker := &manualTicker{}
	timer, displays := newTestTimer(clock, ticker)

	timer.Stop()
	if timer.Running() {
		t.Fatalf("idle timer must stay idle after Stop")
	}

	timer.Start()
	expectDisplay(t, displays, "00:00")
	clock.Advance(3 * time.Second)
	timer.Stop()
	timer.Stop()

	if ticker.Stopped() != 1 {
		t.Fatalf("tick source stopped %d times, want 1", ticker.Stopped())
	}

	clock.Advance(10 * time.Second)
	if got := timer.Elapsed(); got != 3*time.Second {
		t.Fatalf("Elapsed after stop = %v, want 3s", got)
	}

	ticker.Tick()
	select {
	case got := <-displays:
		t.Fatalf("unexpected display after Stop: %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerRestartCancelsPreviousSource(t *testing.T) {
	clock := newFakeClock()
	ticker := &manualTicker{}
	timer, displays := newTestTimer(clock, ticker)

	timer.Start()
	expectDisplay(t, displays, "00:00")
	clock.Advance(30 * time.Second)

	timer.Start()
	expectDisplay(t, displays, "00:00")

	if ticker.Started() != 2 || ticker.Stopped() != 1 {
		t.Fatalf("started=%d stopped=%d, want 2 and 1", ticker.Started(), ticker.Stopped())
	}

	clock.Advance(2 * time.Second)
	ticker.Tick()
	expectDisplay(t, displays, "00:02")
}

func TestTimerResetZeroesDisplay(t *testing.T) {
	clock := newFakeClock()
	ticker := &manualTicker{}
	timer, displays := newTestTimer(clock, ticker)

	timer.Start()
	expectDisplay(t, displays, "00:00")
	clock.Advance(42 * time.Second)

	timer.Reset()
	expectDisplay(t, displays, "00:00")
	if timer.Running() || timer.Elapsed() != 0 {
		t.Fatalf("Reset should leave an idle zeroed timer, running=%v elapsed=%v", timer.Running(), timer.Elapsed())
	}
}
