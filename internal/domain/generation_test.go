package domain

import (
	"errors"
	"testing"
)

func TestGenerationRequestValidate(t *testing.T) {
	images := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "data:image/png;base64,AAAA"
		}
		return out
	}
	tests := []struct {
		name string
		req  GenerationRequest
		want error
	}{
		{"text only", GenerationRequest{MaterialText: "notes", NumberOfQuestions: 10}, nil},
		{"images only", GenerationRequest{MaterialImages: images(2), NumberOfQuestions: 1}, nil},
		{"blank text", GenerationRequest{MaterialText: "   ", NumberOfQuestions: 5}, ErrNoMaterial},
		{"zero questions", GenerationRequest{MaterialText: "notes"}, ErrInvalidQuestionCount},
		{"too many questions", GenerationRequest{MaterialText: "notes", NumberOfQuestions: 51}, ErrInvalidQuestionCount},
		{"max questions", GenerationRequest{MaterialText: "notes", NumberOfQuestions: 50}, nil},
		{"too many images", GenerationRequest{MaterialImages: images(6), NumberOfQuestions: 3}, ErrTooManyImages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestImageURIsFiltersNonImages(t *testing.T) {
	req := GenerationRequest{MaterialImages: []string{
		"data:image/jpeg;base64,AAAA",
		"https://example.com/a.png",
		"data:text/plain;base64,AAAA",
	}}
	got := req.ImageURIs()
	if len(got) != 1 || got[0] != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("unexpected uris %v", got)
	}
}

func TestGenerationErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&GenerationError{Kind: GenerationService, Err: cause})
	if !errors.Is(err, ErrGenerationFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected sentinel and cause to match, got %v", err)
	}
}
