package app

import (
	"math"
	"sync"
	"time"

	"quiz-trainer/internal/domain"
)

// TimerState is the lifecycle of the countdown for one question.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerExpired
	TimerSubmitted
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerExpired:
		return "expired"
	case TimerSubmitted:
		return "submitted"
	default:
		return "idle"
	}
}

// Timer tracks time spent on the question currently on screen. A limit of 0 means
// untimed: Tick never expires and Submit reports 0 seconds.
//
// Expiry and manual submission both close the question by claiming the timer
// (Running -> Expired or Running -> Submitted). Only the first claim succeeds.
type Timer struct {
	mu        sync.Mutex
	limit     int
	now       func() time.Time
	state     TimerState
	startedAt time.Time
	pausedAt  time.Time
	paused    time.Duration
	remaining int
}

func NewTimer(limit int, now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	if limit < 0 {
		limit = 0
	}
	return &Timer{limit: limit, now: now, remaining: limit}
}

// Start discards all timing state and begins counting from now.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TimerRunning
	t.startedAt = t.now()
	t.pausedAt = time.Time{}
	t.paused = 0
	t.remaining = t.limit
}

// Pause freezes the countdown. It is a no-op for untimed questions.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == 0 {
		return nil
	}
	if t.state != TimerRunning {
		return domain.ErrTimerNotRunning
	}
	t.state = TimerPaused
	t.pausedAt = t.now()
	return nil
}

// Resume restarts a paused countdown, excluding the paused interval from time taken.
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == 0 {
		return nil
	}
	if t.state != TimerPaused {
		return domain.ErrTimerNotPaused
	}
	if d := t.now().Sub(t.pausedAt); d > 0 {
		t.paused += d
	}
	t.pausedAt = time.Time{}
	t.state = TimerRunning
	return nil
}

// Tick advances the countdown by one second. When the countdown reaches zero the
// timer is claimed as expired and expired is true; timeTaken is then the full limit.
func (t *Timer) Tick() (expired bool, timeTaken int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == 0 || t.state != TimerRunning {
		return false, 0
	}
	t.remaining--
	if t.remaining > 0 {
		return false, 0
	}
	t.remaining = 0
	t.state = TimerExpired
	return true, t.limit
}

// Submit claims the timer for a manual submission and returns the active seconds
// spent on the question, clamped to [0, limit].
func (t *Timer) Submit() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case TimerPaused:
		return 0, domain.ErrTimerPaused
	case TimerExpired, TimerSubmitted:
		return 0, domain.ErrQuestionClosed
	case TimerIdle:
		return 0, domain.ErrTimerNotRunning
	}
	t.state = TimerSubmitted
	if t.limit == 0 {
		return 0, nil
	}
	return t.activeSecondsLocked(), nil
}

func (t *Timer) activeSecondsLocked() int {
	active := t.now().Sub(t.startedAt) - t.paused
	secs := int(math.Round(active.Seconds()))
	if secs < 0 {
		return 0
	}
	if secs > t.limit {
		return t.limit
	}
	return secs
}

func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Limit() int { return t.limit }
