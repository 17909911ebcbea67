// Package domain provides the canonical types shared by the generation client core.
package domain

import (
	"fmt"
	"time"
)

// Mode selects which input drives a generation request.
type Mode string

const (
	// ModePhoto transforms an uploaded image.
	ModePhoto Mode = "photo"

	// ModeText generates from a prompt and style.
	ModeText Mode = "text"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePhoto || m == ModeText
}

// Style identifies an art style preset. Only meaningful in text mode.
type Style string

// DefaultStyle is used when no style has been chosen.
const DefaultStyle Style = "classic-ghibli"

// GenerationRequest is the validated input handed to the orchestrator.
type GenerationRequest struct {
	Mode       Mode
	ImageData  []byte
	ImageName  string
	PromptText string
	Style      Style
}

// Artifact is the opaque binary returned by a successful generation.
type Artifact struct {
	Data     []byte
	MIMEType string
}

// Phase is the request state machine phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseAwaitingResponse
	PhaseSuccess
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseIdle:             "idle",
	PhaseValidating:       "validating",
	PhaseSubmitting:       "submitting",
	PhaseAwaitingResponse: "awaiting_response",
	PhaseSuccess:          "success",
	PhaseError:            "error",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// InFlight reports whether a request is currently dispatched.
func (p Phase) InFlight() bool {
	return p == PhaseSubmitting || p == PhaseAwaitingResponse
}

// GenerationState is a snapshot of the orchestrator.
// Result is set only in PhaseSuccess and Err only in PhaseError.
type GenerationState struct {
	Phase  Phase
	Result *ResourceHandle
	Err    *GenerationError
}

// ErrorMessage returns the user facing error text, or "" outside PhaseError.
func (s GenerationState) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Slot names a logical resource position owned by the preview manager.
type Slot string

const (
	SlotInputPreview Slot = "input_preview"
	SlotResult       Slot = "result"
)

// ResourceHandle is an owned reference to a transient binary artifact.
type ResourceHandle struct {
	Slot       Slot
	Reference  string
	SourceData []byte
	MIMEType   string
	CreatedAt  time.Time
}

// SurfaceStatus is the render context status of a guarded surface.
type SurfaceStatus int

const (
	SurfaceLive SurfaceStatus = iota
	SurfaceLost
	SurfaceRecovering
	SurfaceFailed
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceLive:
		return "live"
	case SurfaceLost:
		return "lost"
	case SurfaceRecovering:
		return "recovering"
	case SurfaceFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// RenderContext describes one guarded surface.
type RenderContext struct {
	Status        SurfaceStatus
	LossTimestamp time.Time
}
