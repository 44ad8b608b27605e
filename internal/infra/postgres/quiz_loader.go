package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-trainer/internal/domain"
)

// QuizLoader loads quiz JSONB from Postgres.
// Stored documents are parsed with the hand-authored schema, so a row edited
// by hand into an invalid shape surfaces as a validation error, not a panic later.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDocument, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizDocument{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("load quiz: %w", err)
	}
	doc, err := domain.HandAuthored.Parse(raw)
	if err != nil {
		return domain.QuizDocument{}, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	return doc, nil
}
