package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/memory"
)

func TestLoadStoredStartsAttempt(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	session := service.Open(ctx)
	if store.Len() != 1 {
		t.Fatalf("expected session registered, got %d", store.Len())
	}
	if err := service.LoadStored(ctx, session.ID(), "quiz-1", domain.ModeExam, 30); err != nil {
		t.Fatalf("load stored: %v", err)
	}

	snap := session.Snapshot()
	if snap.State != domain.StateActive || snap.Title != "Basics" || snap.TimeLimit != 30 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Question == nil || len(snap.Question.Options) != 2 {
		t.Fatalf("expected open question, got %+v", snap.Question)
	}
}

func TestLoadStoredErrors(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if err := service.LoadStored(ctx, "nope", "quiz-1", domain.ModeExam, 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error, got %v", err)
	}

	session := service.Open(ctx)
	if err := service.LoadStored(ctx, session.ID(), "quiz-unknown", domain.ModeExam, 0); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz error, got %v", err)
	}
	if session.State() != domain.StateUpload {
		t.Fatalf("failed load must leave upload, got %s", session.State())
	}
}

func TestCloseForgetsSession(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	session := service.Open(ctx)
	notes, cancel := session.Subscribe()
	defer cancel()

	service.Close(ctx, session.ID())
	if _, err := service.Session(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
	if _, ok := <-notes; ok {
		t.Fatalf("expected notifications closed")
	}
	service.Close(ctx, session.ID())
}

func TestOpenIssuesDistinctSessions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	a, b := service.Open(ctx), service.Open(ctx)
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct session ids")
	}
	if err := service.LoadStored(ctx, a.ID(), "quiz-1", domain.ModeStudy, 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.State() != domain.StateUpload {
		t.Fatalf("sessions must not share state")
	}
}

func newTestService() (*app.QuizService, *memory.SessionStore) {
	sessionStore := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.QuizDocument{
		"quiz-1": {
			Title: "Basics",
			Questions: []domain.Question{
				{
					ID:             "q1",
					QuestionText:   "Select the right option",
					Options:        []string{"Wrong", "Right"},
					CorrectAnswers: []int{1},
				},
			},
		},
	}), 5*time.Minute)
	return app.NewQuizService(sessionStore, quizRepo, nil, app.WithTickInterval(0)), sessionStore
}
