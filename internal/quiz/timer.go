package quiz

import (
	"fmt"
	"sync"
	"time"
)

const defaultTickInterval = time.Second

// TickerFunc starts a periodic tick source and returns its channel and a stop function.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

func realTicker(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// FormatElapsed renders d as MM:SS with unbounded minutes.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Timer is the answer stopwatch. It is either idle or running; while running it reports the
// formatted elapsed time to OnTick once per interval.
type Timer struct {
	mu       sync.Mutex
	now      func() time.Time
	ticker   TickerFunc
	interval time.Duration
	onTick   func(display string)

	running    bool
	start      time.Time
	elapsed    time.Duration
	generation uint64
	stopTicks  func()
	done       chan struct{}
}

type TimerOption func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TimerOption {
	return func(t *Timer) {
		t.now = now
	}
}

// WithTicker replaces the tick source.
func WithTicker(ticker TickerFunc) TimerOption {
	return func(t *Timer) {
		t.ticker = ticker
	}
}

func WithTickInterval(interval time.Duration) TimerOption {
	return func(t *Timer) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

// NewTimer builds an idle timer. onTick may be nil.
func NewTimer(onTick func(display string), opts ...TimerOption) *Timer {
	t := &Timer{
		now:      time.Now,
		ticker:   realTicker,
		interval: defaultTickInterval,
		onTick:   onTick,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start restarts the stopwatch from zero, cancelling any running tick source first.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.running = true
	t.start = t.now()
	t.elapsed = 0
	t.generation++

	ticks, stop := t.ticker(t.interval)
	t.stopTicks = stop
	t.done = make(chan struct{})
	go t.run(t.generation, ticks, t.done)

	t.display(0)
}

// Stop freezes the elapsed time. Calling it on an idle timer does nothing. No tick is
// reported after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Reset stops the timer and zeroes the display.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.elapsed = 0
	t.display(0)
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed is live while running and frozen once stopped.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return t.now().Sub(t.start)
	}
	return t.elapsed
}

func (t *Timer) stopLocked() {
	if !t.running {
		return
	}
	t.elapsed = t.now().Sub(t.start)
	t.running = false
	t.generation++
	if t.stopTicks != nil {
		t.stopTicks()
		t.stopTicks = nil
	}
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
}

func (t *Timer) run(generation uint64, ticks <-chan time.Time, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticks:
		}

		t.mu.Lock()
		if !t.running || t.generation != generation {
			t.mu.Unlock()
			return
		}
		t.elapsed = t.now().Sub(t.start)
		t.display(t.elapsed)
		t.mu.Unlock()
	}
}

func (t *Timer) display(d time.Duration) {
	if t.onTick != nil {
		t.onTick(FormatElapsed(d))
	}
}
