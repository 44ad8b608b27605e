package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quiz-trainer/internal/domain"
)

// ShuffledOption pairs a displayed option with its index in the original question.
type ShuffledOption struct {
	Text          string
	OriginalIndex int
}

// ShuffledView is the display order of one question's options. It must be kept for
// as long as the question is shown; selections are translated back through it.
type ShuffledView []ShuffledOption

// Translate maps display positions back to original option indices, in display order.
func (v ShuffledView) Translate(positions []int) ([]int, error) {
	out := make([]int, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(v) {
			return nil, fmt.Errorf("%w: %d", domain.ErrOptionOutOfRange, p)
		}
		out = append(out, v[p].OriginalIndex)
	}
	return out, nil
}

// Shuffler produces uniform random permutations of option lists.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Shuffler{rnd: rand.New(src)}
}

// Shuffle returns a Fisher-Yates permutation of options.
func (s *Shuffler) Shuffle(options []string) ShuffledView {
	view := make(ShuffledView, len(options))
	for i, text := range options {
		view[i] = ShuffledOption{Text: text, OriginalIndex: i}
	}
	s.mu.Lock()
	s.rnd.Shuffle(len(view), func(i, j int) { view[i], view[j] = view[j], view[i] })
	s.mu.Unlock()
	return view
}
