package app

import (
	"errors"
	"testing"

	"quiz-trainer/internal/domain"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    domain.State
		event   Event
		want    domain.State
		wantErr bool
	}{
		{domain.StateUpload, EventLoad, domain.StateActive, false},
		{domain.StateUpload, EventGenerate, domain.StateGenerating, false},
		{domain.StateGenerating, EventGenerated, domain.StateActive, false},
		{domain.StateGenerating, EventGenerationFailed, domain.StateUpload, false},
		{domain.StateActive, EventFinish, domain.StateResults, false},
		{domain.StateActive, EventExitStudy, domain.StateUpload, false},
		{domain.StateResults, EventRestart, domain.StateUpload, false},

		{domain.StateUpload, EventRestart, domain.StateUpload, true},
		{domain.StateUpload, EventFinish, domain.StateUpload, true},
		{domain.StateGenerating, EventLoad, domain.StateGenerating, true},
		{domain.StateActive, EventLoad, domain.StateActive, true},
		{domain.StateActive, EventRestart, domain.StateActive, true},
		{domain.StateResults, EventLoad, domain.StateResults, true},
	}
	for _, tt := range tests {
		got, err := Transition(tt.from, tt.event)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Fatalf("%s+%s: expected invalid transition, got %v", tt.from, tt.event, err)
			}
		} else if err != nil {
			t.Fatalf("%s+%s: %v", tt.from, tt.event, err)
		}
		if got != tt.want {
			t.Fatalf("%s+%s = %s, want %s", tt.from, tt.event, got, tt.want)
		}
	}
}
