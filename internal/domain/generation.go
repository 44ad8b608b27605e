package domain

import (
	"fmt"
	"strings"
)

const (
	MinGeneratedQuestions = 1
	MaxGeneratedQuestions = 50
	MaxMaterialImages     = 5
)

// Validate rejects request shapes that must never reach the generation service.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.MaterialText) == "" && len(r.MaterialImages) == 0 {
		return ErrNoMaterial
	}
	if r.NumberOfQuestions < MinGeneratedQuestions || r.NumberOfQuestions > MaxGeneratedQuestions {
		return ErrInvalidQuestionCount
	}
	if len(r.MaterialImages) > MaxMaterialImages {
		return fmt.Errorf("%w: got %d, at most %d allowed", ErrTooManyImages, len(r.MaterialImages), MaxMaterialImages)
	}
	return nil
}

// ImageURIs returns the attached images that are inline image data URIs.
func (r GenerationRequest) ImageURIs() []string {
	out := make([]string, 0, len(r.MaterialImages))
	for _, uri := range r.MaterialImages {
		if strings.HasPrefix(uri, "data:image/") {
			out = append(out, uri)
		}
	}
	return out
}
