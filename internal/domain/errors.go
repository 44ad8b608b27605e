package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is the root of every document validation failure.
	ErrInvalidQuiz = errors.New("invalid quiz document")
	// ErrNoQuiz is returned for operations that need a loaded document.
	ErrNoQuiz = errors.New("no quiz loaded")
	// ErrInvalidTransition is returned when an event is not legal in the current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInvalidMode indicates an unknown quiz mode.
	ErrInvalidMode = errors.New("invalid quiz mode")
	// ErrInvalidTimeLimit indicates a negative per-question time limit.
	ErrInvalidTimeLimit = errors.New("time limit must not be negative")
	// ErrOptionOutOfRange indicates a selection outside the displayed options.
	ErrOptionOutOfRange = errors.New("option position out of range")
	// ErrTimerPaused is returned for selections or submissions while the timer is paused.
	ErrTimerPaused = errors.New("question timer is paused")
	// ErrTimerNotRunning is returned when pausing a timer that is not running.
	ErrTimerNotRunning = errors.New("question timer is not running")
	// ErrTimerNotPaused is returned when resuming a timer that is not paused.
	ErrTimerNotPaused = errors.New("question timer is not paused")
	// ErrQuestionClosed is returned when the current question has already been submitted.
	ErrQuestionClosed = errors.New("question already submitted")

	// ErrNoMaterial is returned when a generation request has neither text nor images.
	ErrNoMaterial = errors.New("please provide some study material (text or images)")
	// ErrInvalidQuestionCount is returned when the requested question count is out of range.
	ErrInvalidQuestionCount = errors.New("number of questions must be between 1 and 50")
	// ErrTooManyImages is returned when more than MaxMaterialImages images are attached.
	ErrTooManyImages = errors.New("too many material images")
	// ErrGenerationFailed is the root of every generation failure.
	ErrGenerationFailed = errors.New("quiz generation failed")
)

// ValidationError pins a document failure to a question position and rule.
// Index is -1 for top-level violations.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid quiz format: %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid quiz format: question %d: %q %s", e.Index+1, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidQuiz }

// GenerationErrorKind distinguishes collaborator failures from unusable output.
type GenerationErrorKind string

const (
	GenerationService GenerationErrorKind = "service"
	GenerationEmpty   GenerationErrorKind = "empty"
)

// GenerationError wraps a failed generation attempt.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case GenerationEmpty:
		if e.Err != nil {
			return "no usable quiz could be generated from the provided material: " + e.Err.Error()
		}
		return "no usable quiz could be generated from the provided material"
	default:
		if e.Err != nil {
			return "quiz generation service error: " + e.Err.Error()
		}
		return "quiz generation service error"
	}
}

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

func (e *GenerationError) Unwrap() error { return e.Err }
