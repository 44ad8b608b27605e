package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-trainer/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// QuizStore writes documents into the quiz library.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

// Save validates doc and upserts it under quizID.
func (s *QuizStore) Save(ctx context.Context, quizID string, doc domain.QuizDocument) error {
	if quizID == "" {
		return fmt.Errorf("save quiz: empty id")
	}
	if err := domain.HandAuthored.Validate(doc); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	row := &quizRow{ID: quizID, Data: data, UpdatedAt: time.Now().UTC()}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

// List returns stored quiz ids ordered by id.
func (s *QuizStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().
		Model((*quizRow)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return ids, nil
}
