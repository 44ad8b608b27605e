package app

import (
	"errors"
	"testing"
	"time"

	"quiz-trainer/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func TestTimerSubmitClampsToLimit(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(60, clock.now)
	timer.Start()

	clock.advance(75 * time.Second)
	taken, err := timer.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if taken != 60 {
		t.Fatalf("expected 60, got %d", taken)
	}
}

func TestTimerExcludesPausedTime(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(60, clock.now)
	timer.Start()

	clock.advance(10 * time.Second)
	if err := timer.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := timer.Submit(); !errors.Is(err, domain.ErrTimerPaused) {
		t.Fatalf("expected paused error, got %v", err)
	}
	if expired, _ := timer.Tick(); expired || timer.Remaining() != 60 {
		t.Fatalf("paused timer must not count down, remaining=%d", timer.Remaining())
	}

	clock.advance(10 * time.Second)
	if err := timer.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clock.advance(10*time.Second + 400*time.Millisecond)

	taken, err := timer.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if taken != 20 {
		t.Fatalf("expected 20 active seconds, got %d", taken)
	}
}

func TestTimerExpiresOnce(t *testing.T) {
	timer := NewTimer(3, newFakeClock().now)
	timer.Start()

	for i := 0; i < 2; i++ {
		if expired, _ := timer.Tick(); expired {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	expired, taken := timer.Tick()
	if !expired || taken != 3 {
		t.Fatalf("expected expiry with full limit, got expired=%v taken=%d", expired, taken)
	}
	if timer.State() != TimerExpired || timer.Remaining() != 0 {
		t.Fatalf("unexpected state %s remaining %d", timer.State(), timer.Remaining())
	}
	if expired, _ := timer.Tick(); expired {
		t.Fatalf("expired twice")
	}
	if _, err := timer.Submit(); !errors.Is(err, domain.ErrQuestionClosed) {
		t.Fatalf("expected closed after expiry, got %v", err)
	}
}

func TestTimerSubmitBlocksExpiry(t *testing.T) {
	timer := NewTimer(1, newFakeClock().now)
	timer.Start()
	if _, err := timer.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if expired, _ := timer.Tick(); expired {
		t.Fatalf("tick after submit must not expire")
	}
	if _, err := timer.Submit(); !errors.Is(err, domain.ErrQuestionClosed) {
		t.Fatalf("expected closed on second submit, got %v", err)
	}
}

func TestTimerUntimed(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(0, clock.now)
	timer.Start()

	if err := timer.Pause(); err != nil {
		t.Fatalf("pause should be a no-op: %v", err)
	}
	if timer.State() != TimerRunning {
		t.Fatalf("untimed pause changed state to %s", timer.State())
	}
	for i := 0; i < 100; i++ {
		if expired, _ := timer.Tick(); expired {
			t.Fatalf("untimed timer expired")
		}
	}
	clock.advance(42 * time.Second)
	taken, err := timer.Submit()
	if err != nil || taken != 0 {
		t.Fatalf("expected 0 for untimed submit, got %d err=%v", taken, err)
	}
}

func TestTimerStateErrors(t *testing.T) {
	timer := NewTimer(30, nil)
	if _, err := timer.Submit(); !errors.Is(err, domain.ErrTimerNotRunning) {
		t.Fatalf("expected not running, got %v", err)
	}
	if err := timer.Pause(); !errors.Is(err, domain.ErrTimerNotRunning) {
		t.Fatalf("expected not running, got %v", err)
	}
	timer.Start()
	if err := timer.Resume(); !errors.Is(err, domain.ErrTimerNotPaused) {
		t.Fatalf("expected not paused, got %v", err)
	}
}
