package orchestrator

import (
	"fmt"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// allowed lists the forward transitions of one request lifecycle.
// Reset to idle is always allowed and is not listed.
var allowed = map[domain.Phase][]domain.Phase{
	domain.PhaseIdle:             {domain.PhaseValidating},
	domain.PhaseValidating:       {domain.PhaseSubmitting, domain.PhaseError},
	domain.PhaseSubmitting:       {domain.PhaseAwaitingResponse, domain.PhaseError},
	domain.PhaseAwaitingResponse: {domain.PhaseSuccess, domain.PhaseError},
	domain.PhaseSuccess:          {domain.PhaseValidating},
	domain.PhaseError:            {domain.PhaseValidating},
}

// CanTransition reports whether the state machine may move from one phase to another.
func CanTransition(from, to domain.Phase) bool {
	if to == domain.PhaseIdle {
		return true
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a phase change and returns the new phase.
func Transition(from, to domain.Phase) (domain.Phase, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	return to, nil
}
