package domain

import (
	"math"
	"time"
)

// Mode selects how a loaded quiz is presented.
type Mode string

const (
	ModeExam  Mode = "exam"
	ModeStudy Mode = "study"
)

// Valid reports whether m is a known quiz mode.
func (m Mode) Valid() bool {
	return m == ModeExam || m == ModeStudy
}

// State is the top-level phase of a quiz session.
type State string

const (
	StateUpload     State = "upload"
	StateGenerating State = "generating"
	StateActive     State = "active"
	StateResults    State = "results"
)

// Question is a single quiz item. CorrectAnswers are 0-based indices into Options.
type Question struct {
	ID               string   `json:"id"`
	QuestionText     string   `json:"questionText"`
	Options          []string `json:"options"`
	CorrectAnswers   []int    `json:"correctAnswers"`
	IsMultipleChoice bool     `json:"isMultipleChoice"`
	Explanation      string   `json:"explanation,omitempty"`
}

// QuizDocument is a validated, immutable question set.
type QuizDocument struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// AnswerRecord is the outcome of one question in one attempt.
// Options and CorrectAnswers are copies taken at answer time.
type AnswerRecord struct {
	QuestionID         string   `json:"questionId"`
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	SelectedAnswers    []int    `json:"selectedAnswers"`
	CorrectAnswers     []int    `json:"correctAnswers"`
	Explanation        string   `json:"explanation,omitempty"`
	TimeTaken          int      `json:"timeTaken"`
	IsCorrect          bool     `json:"isCorrect"`
	IsPartiallyCorrect bool     `json:"isPartiallyCorrect"`
	WasSkipped         bool     `json:"wasSkipped"`
}

// NeedsReview reports whether the record belongs in the post-result review pass.
func (a AnswerRecord) NeedsReview() bool {
	return !a.IsCorrect || a.WasSkipped
}

// QuizResult summarizes a finished exam attempt.
type QuizResult struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        []AnswerRecord `json:"answers"`
	TotalTimeTaken int            `json:"totalTimeTaken"`
}

// Percent returns the score as a percentage rounded to one decimal place.
func (r QuizResult) Percent() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return math.Round(float64(r.Score)*1000/float64(r.TotalQuestions)) / 10
}

// GenerationRequest asks the generator for a quiz built from study material.
// MaterialImages are data URIs ("data:image/png;base64,...").
type GenerationRequest struct {
	MaterialText      string   `json:"materialText,omitempty"`
	MaterialImages    []string `json:"materialImages,omitempty"`
	NumberOfQuestions int      `json:"numberOfQuestions"`
}

// NotificationKind identifies a session event surfaced to the client.
type NotificationKind string

const (
	NotifyQuizReady        NotificationKind = "quiz_ready"
	NotifyStudyReady       NotificationKind = "study_ready"
	NotifyQuestion         NotificationKind = "question"
	NotifyTick             NotificationKind = "tick"
	NotifyQuizFinished     NotificationKind = "quiz_finished"
	NotifyGenerationFailed NotificationKind = "generation_failed"
)

// Notification is a display-level event emitted by a session.
type Notification struct {
	SessionID string           `json:"sessionId"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	At        time.Time        `json:"at"`
}

// OptionView is one option as displayed to the user.
type OptionView struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// QuestionView is the active exam question in display order. Correct answers are withheld.
type QuestionView struct {
	ID               string       `json:"id"`
	QuestionText     string       `json:"questionText"`
	Options          []OptionView `json:"options"`
	IsMultipleChoice bool         `json:"isMultipleChoice"`
	Selected         []int        `json:"selected"`
}

// ReviewView describes the review cursor over missed answers.
type ReviewView struct {
	Current  *AnswerRecord `json:"current,omitempty"`
	Position int           `json:"position"`
	Total    int           `json:"total"`
}

// SessionSnapshot is a read-only copy of a session's observable state.
type SessionSnapshot struct {
	SessionID      string        `json:"sessionId"`
	State          State         `json:"state"`
	Mode           Mode          `json:"mode,omitempty"`
	Title          string        `json:"title,omitempty"`
	QuestionIndex  int           `json:"questionIndex"`
	TotalQuestions int           `json:"totalQuestions"`
	TimeLimit      int           `json:"timeLimit"`
	Remaining      int           `json:"remaining"`
	Paused         bool          `json:"paused"`
	Question       *QuestionView `json:"question,omitempty"`
	Card           *Question     `json:"card,omitempty"`
	Answered       int           `json:"answered"`
	Result         *QuizResult   `json:"result,omitempty"`
	Review         *ReviewView   `json:"review,omitempty"`
	LastError      string        `json:"lastError,omitempty"`
}
