package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-trainer/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads stored quiz documents (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDocument, error)
}

// QuizService opens sessions and feeds them stored documents.
type QuizService struct {
	sessions    SessionRepository
	quizzes     QuizRepository
	logger      *zap.Logger
	sessionOpts []Option
}

// NewQuizService wires the service. sessionOpts are applied to every session it opens.
func NewQuizService(store SessionRepository, quizzes QuizRepository, logger *zap.Logger, sessionOpts ...Option) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := append([]Option{WithLogger(logger)}, sessionOpts...)
	return &QuizService{sessions: store, quizzes: quizzes, logger: logger, sessionOpts: opts}
}

// Open starts a fresh session in the upload state.
func (s *QuizService) Open(_ context.Context) *Session {
	session := NewSession(uuid.NewString(), s.sessionOpts...)
	s.sessions.Put(session)
	s.logger.Info("session opened", zap.String("session", session.ID()))
	return session
}

// Session looks up a live session.
func (s *QuizService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// LoadStored starts an attempt on a quiz from the library.
func (s *QuizService) LoadStored(ctx context.Context, sessionID, quizID string, mode domain.Mode, timeLimit int) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	doc, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	return session.Load(doc, mode, timeLimit)
}

// Close stops a session and forgets it.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.logger.Info("session closed", zap.String("session", sessionID))
}
