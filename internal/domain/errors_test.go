package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGenerationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GenerationError
		contains []string
	}{
		{
			name:     "validation",
			err:      ErrValidation("please enter a description for your artwork"),
			contains: []string{"please enter a description"},
		},
		{
			name:     "service error carries status and body",
			err:      ErrService(500, "model overloaded"),
			contains: []string{"500", "model overloaded"},
		},
		{
			name:     "network error uses generic message",
			err:      ErrNetwork(errors.New("dial tcp: connection refused")),
			contains: []string{NetworkFailureMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Error() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestGenerationError_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  *GenerationError
		want bool
	}{
		{"validation", ErrValidation("missing"), false},
		{"network", ErrNetwork(errors.New("boom")), true},
		{"service", ErrService(503, "busy"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsType_Wrapped(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("submit: %w", ErrNetwork(cause))

	if !IsType(wrapped, ErrorTypeNetwork) {
		t.Error("expected wrapped network error to match")
	}
	if IsType(wrapped, ErrorTypeService) {
		t.Error("network error must not match service type")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if IsType(errors.New("plain"), ErrorTypeNetwork) {
		t.Error("plain error must not match")
	}
}

func TestPhase_String(t *testing.T) {
	if PhaseAwaitingResponse.String() != "awaiting_response" {
		t.Errorf("unexpected name %q", PhaseAwaitingResponse.String())
	}
	if Phase(42).String() != "phase(42)" {
		t.Errorf("unexpected name for unknown phase %q", Phase(42).String())
	}
	if !PhaseSubmitting.InFlight() || !PhaseAwaitingResponse.InFlight() {
		t.Error("submitting and awaiting_response must be in flight")
	}
	if PhaseValidating.InFlight() || PhaseError.InFlight() {
		t.Error("validating and error must not be in flight")
	}
}

func TestGenerationState_ErrorMessage(t *testing.T) {
	if msg := (GenerationState{Phase: PhaseIdle}).ErrorMessage(); msg != "" {
		t.Errorf("idle ErrorMessage() = %q, want empty", msg)
	}
	st := GenerationState{Phase: PhaseError, Err: ErrService(500, "model overloaded")}
	if !strings.Contains(st.ErrorMessage(), "model overloaded") {
		t.Errorf("ErrorMessage() = %q", st.ErrorMessage())
	}
}
