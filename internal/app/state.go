package app

import (
	"fmt"

	"quiz-trainer/internal/domain"
)

// Event drives the session state machine.
type Event string

const (
	EventLoad             Event = "load"
	EventGenerate         Event = "generate"
	EventGenerated        Event = "generated"
	EventGenerationFailed Event = "generation_failed"
	EventFinish           Event = "finish"
	EventExitStudy        Event = "exit_study"
	EventRestart          Event = "restart"
)

type transitionKey struct {
	from  domain.State
	event Event
}

var transitions = map[transitionKey]domain.State{
	{domain.StateUpload, EventLoad}:                 domain.StateActive,
	{domain.StateUpload, EventGenerate}:             domain.StateGenerating,
	{domain.StateGenerating, EventGenerated}:        domain.StateActive,
	{domain.StateGenerating, EventGenerationFailed}: domain.StateUpload,
	{domain.StateActive, EventFinish}:               domain.StateResults,
	{domain.StateActive, EventExitStudy}:            domain.StateUpload,
	{domain.StateResults, EventRestart}:             domain.StateUpload,
}

// Transition returns the state reached by applying ev in from.
func Transition(from domain.State, ev Event) (domain.State, error) {
	to, ok := transitions[transitionKey{from, ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s in state %s", domain.ErrInvalidTransition, ev, from)
	}
	return to, nil
}
