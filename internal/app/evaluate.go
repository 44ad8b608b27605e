package app

import (
	"sort"

	"quiz-trainer/internal/domain"
)

// Evaluation classifies a submitted selection.
type Evaluation struct {
	IsCorrect          bool
	IsPartiallyCorrect bool
	WasSkipped         bool
}

// Outcome names the evaluation for logs and metrics.
func (e Evaluation) Outcome() string {
	switch {
	case e.WasSkipped:
		return "skipped"
	case e.IsCorrect:
		return "correct"
	case e.IsPartiallyCorrect:
		return "partial"
	default:
		return "incorrect"
	}
}

// Evaluate compares selected original indices against the question's correct set.
// Partial credit applies only to multi-choice questions and only when the selection
// is a strict subset of the correct answers with no wrong option chosen.
func Evaluate(q domain.Question, selected []int) Evaluation {
	sel := toSet(selected)
	correct := toSet(q.CorrectAnswers)

	matched, extra := 0, 0
	for idx := range sel {
		if _, ok := correct[idx]; ok {
			matched++
		} else {
			extra++
		}
	}

	ev := Evaluation{WasSkipped: len(sel) == 0}
	if !q.IsMultipleChoice {
		ev.IsCorrect = len(sel) == 1 && extra == 0
		return ev
	}
	ev.IsCorrect = matched == len(correct) && extra == 0 && len(sel) == len(correct)
	ev.IsPartiallyCorrect = matched > 0 && matched < len(correct) && extra == 0
	return ev
}

// NewAnswerRecord evaluates a selection and builds the immutable record for it.
func NewAnswerRecord(q domain.Question, selected []int, timeTaken int) domain.AnswerRecord {
	ev := Evaluate(q, selected)
	return domain.AnswerRecord{
		QuestionID:         q.ID,
		QuestionText:       q.QuestionText,
		Options:            append([]string(nil), q.Options...),
		SelectedAnswers:    sortedKeys(toSet(selected)),
		CorrectAnswers:     append([]int(nil), q.CorrectAnswers...),
		Explanation:        q.Explanation,
		TimeTaken:          timeTaken,
		IsCorrect:          ev.IsCorrect,
		IsPartiallyCorrect: ev.IsPartiallyCorrect,
		WasSkipped:         ev.WasSkipped,
	}
}

// NewQuizResult totals an attempt's answer records.
func NewQuizResult(answers []domain.AnswerRecord, totalQuestions int) domain.QuizResult {
	result := domain.QuizResult{
		TotalQuestions: totalQuestions,
		Answers:        append([]domain.AnswerRecord(nil), answers...),
	}
	for _, a := range answers {
		if a.IsCorrect {
			result.Score++
		}
		result.TotalTimeTaken += a.TimeTaken
	}
	return result
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
