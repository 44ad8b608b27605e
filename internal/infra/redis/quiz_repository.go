package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/infra/memory"
)

// QuizRepository caches quiz documents in Redis and falls back to a loader on miss.
// Documents are stored as JSON: SET quiz:{quizID}:doc {json} EX ttl.
// Cached payloads are re-validated on read; a corrupt entry is treated as a miss.
type QuizRepository struct {
	client *redis.Client
	loader memory.QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader memory.QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDocument, error) {
	if doc, ok := r.cached(ctx, quizID); ok {
		return doc, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if doc, ok := r.cached(ctx, quizID); ok {
			return doc, nil
		}
		doc, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDocument{}, err
		}
		if data, err := json.Marshal(doc); err == nil {
			_ = r.client.Set(ctx, r.docKey(quizID), data, r.ttlWithJitter()).Err()
		}
		return doc, nil
	})
	if err != nil {
		return domain.QuizDocument{}, err
	}
	return result.(domain.QuizDocument), nil
}

// Invalidate removes the cached copy of a document.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.docKey(quizID)).Err()
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.QuizDocument, bool) {
	data, err := r.client.Get(ctx, r.docKey(quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuizDocument{}, false
	}
	if err != nil {
		// an unreachable cache degrades to the loader
		return domain.QuizDocument{}, false
	}
	doc, err := domain.HandAuthored.Parse(data)
	if err != nil {
		return domain.QuizDocument{}, false
	}
	return doc, true
}

func (r *QuizRepository) docKey(quizID string) string {
	return "quiz:" + quizID + ":doc"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
