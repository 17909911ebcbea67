// Package input selects between photo and text input and applies the
// per-mode validation rules.
package input

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// Validation messages shown to the user.
const (
	MsgImageRequired  = "please upload an image first"
	MsgPromptRequired = "please enter a description for your artwork"
)

// PreviewAcquirer publishes the input preview. Satisfied by *preview.Manager.
type PreviewAcquirer interface {
	AcquireTyped(slot domain.Slot, data []byte, mimeType string) (*domain.ResourceHandle, error)
	Release(slot domain.Slot)
}

// Controller holds the current input mode and the user's input.
// Switching modes never submits and never clears the other mode's input.
type Controller struct {
	mu        sync.Mutex
	previews  PreviewAcquirer
	mode      domain.Mode
	image     []byte
	imageName string
	prompt    string
	style     domain.Style
}

// NewController creates a controller in photo mode with the default style.
// previews may be nil when no preview is displayed.
func NewController(previews PreviewAcquirer) *Controller {
	return &Controller{
		previews: previews,
		mode:     domain.ModePhoto,
		style:    domain.DefaultStyle,
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() domain.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the input mode.
func (c *Controller) SetMode(mode domain.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown input mode %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	return nil
}

// SelectImage stores an uploaded image and publishes its preview.
// Non-image payloads clear the current selection and return ErrUnsupportedMedia.
func (c *Controller) SelectImage(name string, data []byte) (*domain.ResourceHandle, error) {
	mimeType := http.DetectContentType(data)
	if len(data) == 0 || !strings.HasPrefix(mimeType, "image/") {
		c.mu.Lock()
		c.image, c.imageName = nil, ""
		c.mu.Unlock()
		if c.previews != nil {
			c.previews.Release(domain.SlotInputPreview)
		}
		return nil, fmt.Errorf("%w (detected %s)", domain.ErrUnsupportedMedia, mimeType)
	}

	c.mu.Lock()
	c.image, c.imageName = data, name
	c.mu.Unlock()

	if c.previews == nil {
		return nil, nil
	}
	return c.previews.AcquireTyped(domain.SlotInputPreview, data, mimeType)
}

// SetPrompt sets the prompt text used by both modes.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = prompt
}

// SetStyle selects a style from the catalog.
func (c *Controller) SetStyle(style domain.Style) error {
	if _, ok := LookupStyle(style); !ok {
		return fmt.Errorf("unknown style %q", style)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = style
	return nil
}

// Style returns the selected style.
func (c *Controller) Style() domain.Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

// Clear drops the image, its preview and the prompt. Mode and style are kept.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.image, c.imageName, c.prompt = nil, "", ""
	c.mu.Unlock()
	if c.previews != nil {
		c.previews.Release(domain.SlotInputPreview)
	}
}

// DropImage forgets the selected image without touching its preview slot.
// Used after the slot was released elsewhere, such as by a request reset.
func (c *Controller) DropImage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.image, c.imageName = nil, ""
}

// Request shapes the current input into a GenerationRequest.
// Style is attached only in text mode.
func (c *Controller) Request() domain.GenerationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := domain.GenerationRequest{Mode: c.mode, PromptText: c.prompt}
	switch c.mode {
	case domain.ModePhoto:
		req.ImageData = c.image
		req.ImageName = c.imageName
	case domain.ModeText:
		req.Style = c.style
	}
	return req
}

// CanSubmit reports whether the current input passes validation.
func (c *Controller) CanSubmit() bool {
	return Validate(c.Request()) == nil
}

// Validate applies the mode-dependent rule: photo mode needs a non-empty
// image, text mode needs non-blank prompt text.
func Validate(req domain.GenerationRequest) *domain.GenerationError {
	switch req.Mode {
	case domain.ModePhoto:
		if len(req.ImageData) == 0 {
			return domain.ErrValidation(MsgImageRequired)
		}
	case domain.ModeText:
		if strings.TrimSpace(req.PromptText) == "" {
			return domain.ErrValidation(MsgPromptRequired)
		}
	default:
		return domain.ErrValidation(fmt.Sprintf("unknown input mode %q", req.Mode))
	}
	return nil
}
