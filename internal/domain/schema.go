package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Schema describes the shape a quiz payload must satisfy. Hand-authored documents
// and generated documents share the walk but differ in limits.
type Schema struct {
	Name         string
	RequireTitle bool
	MinOptions   int
	MaxCorrect   int // 0 means no upper bound
}

var (
	// HandAuthored applies to uploaded and stored documents.
	HandAuthored = Schema{Name: "hand-authored", MinOptions: 2}
	// Generated applies to documents produced by the generation service.
	Generated = Schema{Name: "generated", RequireTitle: true, MinOptions: 5, MaxCorrect: 5}
)

// questionField is one entry of the per-question schema. check returns an empty
// string when the field is acceptable, otherwise the violated rule.
type questionField struct {
	name  string
	check func(s Schema, raw json.RawMessage, q *Question) string
}

// questionFields is walked in order; the first violation wins.
var questionFields = []questionField{
	{name: "id", check: requiredString(func(q *Question, v string) { q.ID = v })},
	{name: "questionText", check: requiredString(func(q *Question, v string) { q.QuestionText = v })},
	{name: "options", check: checkOptions},
	{name: "correctAnswers", check: checkCorrectAnswers},
	{name: "isMultipleChoice", check: checkMultipleChoice},
	{name: "explanation", check: checkExplanation},
}

// Parse decodes and validates a raw JSON document. No partial document is returned.
func (s Schema) Parse(data []byte) (QuizDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return QuizDocument{}, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	if top == nil {
		return QuizDocument{}, &ValidationError{Index: -1, Field: "quiz", Reason: "must be a JSON object"}
	}

	var doc QuizDocument
	if raw, ok := top["title"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &doc.Title); err != nil {
			return QuizDocument{}, &ValidationError{Index: -1, Field: "title", Reason: "is not a string"}
		}
	}
	if s.RequireTitle && doc.Title == "" {
		return QuizDocument{}, &ValidationError{Index: -1, Field: "title", Reason: "is missing or empty"}
	}

	var items []json.RawMessage
	raw, ok := top["questions"]
	if !ok || isNull(raw) || json.Unmarshal(raw, &items) != nil || len(items) == 0 {
		return QuizDocument{}, &ValidationError{Index: -1, Field: "questions", Reason: "array is missing, not an array, or empty"}
	}

	seen := make(map[string]int, len(items))
	doc.Questions = make([]Question, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return QuizDocument{}, &ValidationError{Index: i, Field: "question", Reason: "must be an object"}
		}
		var q Question
		for _, f := range questionFields {
			if reason := f.check(s, fields[f.name], &q); reason != "" {
				return QuizDocument{}, &ValidationError{Index: i, Field: f.name, Reason: reason}
			}
		}
		if prev, dup := seen[q.ID]; dup {
			return QuizDocument{}, &ValidationError{Index: i, Field: "id", Reason: fmt.Sprintf("duplicates question %d", prev+1)}
		}
		seen[q.ID] = i
		doc.Questions = append(doc.Questions, q)
	}
	return doc, nil
}

// Validate checks an already-typed document against the schema.
func (s Schema) Validate(doc QuizDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	_, err = s.Parse(data)
	return err
}

func requiredString(set func(q *Question, v string)) func(Schema, json.RawMessage, *Question) string {
	return func(_ Schema, raw json.RawMessage, q *Question) string {
		var v string
		if isNull(raw) || json.Unmarshal(raw, &v) != nil {
			return "is missing or not a string"
		}
		if v == "" {
			return "must not be empty"
		}
		set(q, v)
		return ""
	}
}

func checkOptions(s Schema, raw json.RawMessage, q *Question) string {
	var opts []string
	if isNull(raw) || json.Unmarshal(raw, &opts) != nil {
		return "must be an array of strings"
	}
	if len(opts) < s.MinOptions {
		return fmt.Sprintf("must contain at least %d options", s.MinOptions)
	}
	q.Options = opts
	return ""
}

func checkCorrectAnswers(s Schema, raw json.RawMessage, q *Question) string {
	var nums []float64
	if isNull(raw) || json.Unmarshal(raw, &nums) != nil {
		return "must be an array of integers"
	}
	if len(nums) == 0 {
		return "must not be empty"
	}
	if s.MaxCorrect > 0 && len(nums) > s.MaxCorrect {
		return fmt.Sprintf("must not contain more than %d indices", s.MaxCorrect)
	}
	indices := make([]int, 0, len(nums))
	seen := make(map[int]struct{}, len(nums))
	for _, n := range nums {
		if n != math.Trunc(n) {
			return "must be an array of integers"
		}
		idx := int(n)
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Sprintf("index %d is not a valid option index", idx)
		}
		if _, dup := seen[idx]; dup {
			return fmt.Sprintf("index %d is repeated", idx)
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	q.CorrectAnswers = indices
	return ""
}

func checkMultipleChoice(_ Schema, raw json.RawMessage, q *Question) string {
	var multi bool
	if isNull(raw) || json.Unmarshal(raw, &multi) != nil {
		return "is missing or not a boolean"
	}
	if !multi && len(q.CorrectAnswers) != 1 {
		return "is false but correctAnswers does not have exactly one index"
	}
	q.IsMultipleChoice = multi
	return ""
}

func checkExplanation(_ Schema, raw json.RawMessage, q *Question) string {
	if isNull(raw) {
		return ""
	}
	if json.Unmarshal(raw, &q.Explanation) != nil {
		return "is not a string"
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
