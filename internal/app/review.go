package app

import "quiz-trainer/internal/domain"

// Review walks the answers of a finished attempt that were wrong or skipped.
// Dismissing an item only removes it from the walk; the result is never modified.
type Review struct {
	items  []domain.AnswerRecord
	cursor int
}

func NewReview(result domain.QuizResult) *Review {
	items := make([]domain.AnswerRecord, 0, len(result.Answers))
	for _, a := range result.Answers {
		if a.NeedsReview() {
			items = append(items, a)
		}
	}
	return &Review{items: items}
}

// Current returns the item under the cursor, or false when nothing is left to review.
func (r *Review) Current() (domain.AnswerRecord, bool) {
	if len(r.items) == 0 {
		return domain.AnswerRecord{}, false
	}
	return r.items[r.cursor], true
}

func (r *Review) Next() {
	if r.cursor < len(r.items)-1 {
		r.cursor++
	}
}

func (r *Review) Previous() {
	if r.cursor > 0 {
		r.cursor--
	}
}

// Dismiss removes the current item and keeps the cursor on a valid position.
func (r *Review) Dismiss() {
	if len(r.items) == 0 {
		return
	}
	r.items = append(r.items[:r.cursor:r.cursor], r.items[r.cursor+1:]...)
	switch {
	case len(r.items) == 0:
		r.cursor = 0
	case r.cursor >= len(r.items):
		r.cursor = len(r.items) - 1
	}
}

func (r *Review) Len() int      { return len(r.items) }
func (r *Review) Position() int { return r.cursor }

func (r *Review) view() *domain.ReviewView {
	v := &domain.ReviewView{Position: r.cursor, Total: len(r.items)}
	if cur, ok := r.Current(); ok {
		v.Current = &cur
	}
	return v
}
