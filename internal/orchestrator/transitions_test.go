package orchestrator

import (
	"testing"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.Phase
		want     bool
	}{
		{domain.PhaseIdle, domain.PhaseValidating, true},
		{domain.PhaseIdle, domain.PhaseSubmitting, false},
		{domain.PhaseValidating, domain.PhaseSubmitting, true},
		{domain.PhaseValidating, domain.PhaseError, true},
		{domain.PhaseValidating, domain.PhaseSuccess, false},
		{domain.PhaseSubmitting, domain.PhaseAwaitingResponse, true},
		{domain.PhaseSubmitting, domain.PhaseSuccess, false},
		{domain.PhaseSubmitting, domain.PhaseValidating, false},
		{domain.PhaseAwaitingResponse, domain.PhaseSuccess, true},
		{domain.PhaseAwaitingResponse, domain.PhaseError, true},
		{domain.PhaseAwaitingResponse, domain.PhaseValidating, false},
		{domain.PhaseSuccess, domain.PhaseValidating, true},
		{domain.PhaseSuccess, domain.PhaseError, false},
		{domain.PhaseError, domain.PhaseValidating, true},
		{domain.PhaseError, domain.PhaseSuccess, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransition_ResetAlwaysAllowed(t *testing.T) {
	for p := domain.PhaseIdle; p <= domain.PhaseError; p++ {
		if !CanTransition(p, domain.PhaseIdle) {
			t.Errorf("CanTransition(%s, idle) = false", p)
		}
	}
}

func TestTransition(t *testing.T) {
	got, err := Transition(domain.PhaseValidating, domain.PhaseSubmitting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.PhaseSubmitting {
		t.Errorf("got %s, want submitting", got)
	}

	got, err = Transition(domain.PhaseIdle, domain.PhaseSuccess)
	if err == nil {
		t.Fatal("expected error for idle -> success")
	}
	if got != domain.PhaseIdle {
		t.Errorf("phase changed on rejected transition: %s", got)
	}
}
