package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-trainer/internal/domain"
)

// QuizLoader fetches validated quiz documents from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizDocument, error)
}

// QuizRepository is the in-process quiz library cache. Entries expire after a
// jittered TTL; concurrent misses for one id share a single load.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	doc       domain.QuizDocument
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDocument, error) {
	if doc, ok := r.lookup(quizID); ok {
		return doc, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if doc, ok := r.lookup(quizID); ok {
			return doc, nil
		}
		doc, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDocument{}, err
		}
		r.store(quizID, doc)
		return doc, nil
	})
	if err != nil {
		return domain.QuizDocument{}, err
	}
	return result.(domain.QuizDocument), nil
}

// Invalidate drops a cached document so the next read goes to the loader.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.mu.Unlock()
}

func (r *QuizRepository) lookup(quizID string) (domain.QuizDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.QuizDocument{}, false
	}
	return entry.doc, true
}

func (r *QuizRepository) store(quizID string, doc domain.QuizDocument) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// up to 10% jitter spreads expirations of documents loaded together
	jitter := time.Duration(r.rnd.Int63n(int64(r.ttl)/10 + 1))
	r.cache[quizID] = cachedQuiz{doc: doc, expiresAt: r.clock().Add(r.ttl + jitter)}
}

// StaticQuizLoader is a loader backed by an in-memory map (useful for tests/demos).
// Documents are validated on every load, like any other source.
type StaticQuizLoader struct {
	quizzes map[string]domain.QuizDocument
}

func NewStaticQuizLoader(quizzes map[string]domain.QuizDocument) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuizDocument, error) {
	doc, ok := l.quizzes[quizID]
	if !ok {
		return domain.QuizDocument{}, domain.ErrQuizNotFound
	}
	if err := domain.HandAuthored.Validate(doc); err != nil {
		return domain.QuizDocument{}, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	return doc, nil
}
