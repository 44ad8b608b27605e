package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestSchemaParseAccepts(t *testing.T) {
	raw := `{
		"title": "Capitals",
		"questions": [
			{"id": "q1", "questionText": "Capital of France?", "options": ["Paris", "Lyon"], "correctAnswers": [0], "isMultipleChoice": false},
			{"id": "q2", "questionText": "Baltic capitals?", "options": ["Riga", "Oslo", "Tallinn"], "correctAnswers": [2, 0], "isMultipleChoice": true, "explanation": "Oslo is Nordic."}
		]
	}`
	doc, err := HandAuthored.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Title != "Capitals" || len(doc.Questions) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	q := doc.Questions[1]
	if !q.IsMultipleChoice || q.CorrectAnswers[0] != 2 || q.Explanation != "Oslo is Nordic." {
		t.Fatalf("unexpected question %+v", q)
	}
}

func TestSchemaParseRejects(t *testing.T) {
	const ok = `{"id":"q1","questionText":"Q","options":["a","b"],"correctAnswers":[0],"isMultipleChoice":false}`
	tests := []struct {
		name  string
		raw   string
		index int
		field string
	}{
		{"not an object", `null`, -1, "quiz"},
		{"title wrong type", `{"title":5,"questions":[` + ok + `]}`, -1, "title"},
		{"questions missing", `{"title":"t"}`, -1, "questions"},
		{"questions empty", `{"questions":[]}`, -1, "questions"},
		{"questions not array", `{"questions":{"a":1}}`, -1, "questions"},
		{"question not object", `{"questions":[` + ok + `,"x"]}`, 1, "question"},
		{"id missing", `{"questions":[{"questionText":"Q","options":["a","b"],"correctAnswers":[0],"isMultipleChoice":false}]}`, 0, "id"},
		{"id empty", `{"questions":[{"id":"","questionText":"Q","options":["a","b"],"correctAnswers":[0],"isMultipleChoice":false}]}`, 0, "id"},
		{"text not string", `{"questions":[{"id":"q","questionText":3,"options":["a","b"],"correctAnswers":[0],"isMultipleChoice":false}]}`, 0, "questionText"},
		{"one option", `{"questions":[{"id":"q","questionText":"Q","options":["a"],"correctAnswers":[0],"isMultipleChoice":false}]}`, 0, "options"},
		{"options not strings", `{"questions":[{"id":"q","questionText":"Q","options":[1,2],"correctAnswers":[0],"isMultipleChoice":false}]}`, 0, "options"},
		{"no correct answers", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[],"isMultipleChoice":true}]}`, 0, "correctAnswers"},
		{"index out of range", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[2],"isMultipleChoice":false}]}`, 0, "correctAnswers"},
		{"negative index", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[-1],"isMultipleChoice":false}]}`, 0, "correctAnswers"},
		{"fractional index", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[0.5],"isMultipleChoice":false}]}`, 0, "correctAnswers"},
		{"repeated index", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[1,1],"isMultipleChoice":true}]}`, 0, "correctAnswers"},
		{"multi flag missing", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[0]}]}`, 0, "isMultipleChoice"},
		{"single with two answers", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[0,1],"isMultipleChoice":false}]}`, 0, "isMultipleChoice"},
		{"explanation not string", `{"questions":[{"id":"q","questionText":"Q","options":["a","b"],"correctAnswers":[0],"isMultipleChoice":false,"explanation":7}]}`, 0, "explanation"},
		{"duplicate id", `{"questions":[` + ok + `,` + ok + `]}`, 1, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HandAuthored.Parse([]byte(tt.raw))
			if !errors.Is(err, ErrInvalidQuiz) {
				t.Fatalf("expected invalid quiz, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Index != tt.index || verr.Field != tt.field {
				t.Fatalf("got index %d field %q, want %d %q (%v)", verr.Index, verr.Field, tt.index, tt.field, err)
			}
		})
	}
}

func TestSchemaParseMalformedJSON(t *testing.T) {
	_, err := HandAuthored.Parse([]byte(`{"questions": [`))
	if !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
}

func TestGeneratedSchemaIsStricter(t *testing.T) {
	fourOptions := `{"title":"Gen","questions":[{"id":"q","questionText":"Q","options":["a","b","c","d"],"correctAnswers":[0],"isMultipleChoice":false}]}`
	if _, err := HandAuthored.Parse([]byte(fourOptions)); err != nil {
		t.Fatalf("hand-authored should accept four options: %v", err)
	}
	if _, err := Generated.Parse([]byte(fourOptions)); err == nil {
		t.Fatalf("generated should require five options")
	}

	untitled := `{"questions":[{"id":"q","questionText":"Q","options":["a","b","c","d","e"],"correctAnswers":[0],"isMultipleChoice":false}]}`
	var verr *ValidationError
	if _, err := Generated.Parse([]byte(untitled)); !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("generated should require a title, got %v", err)
	}

	sixCorrect := `{"title":"Gen","questions":[{"id":"q","questionText":"Q","options":["a","b","c","d","e","f"],"correctAnswers":[0,1,2,3,4,5],"isMultipleChoice":true}]}`
	if _, err := Generated.Parse([]byte(sixCorrect)); !errors.As(err, &verr) || verr.Field != "correctAnswers" {
		t.Fatalf("generated should cap correct answers, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Index: 2, Field: "options", Reason: "must contain at least 2 options"}
	if got := err.Error(); !strings.Contains(got, "question 3") || !strings.Contains(got, `"options"`) {
		t.Fatalf("unexpected message %q", got)
	}
	top := &ValidationError{Index: -1, Field: "questions", Reason: "array is missing, not an array, or empty"}
	if strings.Contains(top.Error(), "question ") {
		t.Fatalf("top-level message should not name a question: %q", top.Error())
	}
}

func TestValidateTypedDocument(t *testing.T) {
	doc := QuizDocument{Questions: []Question{{
		ID: "q1", QuestionText: "Q", Options: []string{"a", "b"}, CorrectAnswers: []int{0},
	}}}
	if err := HandAuthored.Validate(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
	doc.Questions[0].CorrectAnswers = nil
	if err := HandAuthored.Validate(doc); !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
}
