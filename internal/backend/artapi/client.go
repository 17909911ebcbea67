// Package artapi is the HTTP client for the artwork generation service.
package artapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

const (
	defaultBaseURL = "http://localhost:9090"
	defaultTimeout = 120 * time.Second

	// PathGenerate is the photo-to-art endpoint.
	PathGenerate = "/api/v1/generate"
	// PathGenerateFromText is the text-to-art endpoint.
	PathGenerateFromText = "/api/v1/generate-from-text"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// Client calls the generation service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type textRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

// NewClient creates a new generation service client. The default transport
// is instrumented with OpenTelemetry.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate dispatches req to the endpoint matching its mode.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error) {
	switch req.Mode {
	case domain.ModePhoto:
		return c.GenerateFromImage(ctx, req.ImageData, req.ImageName, req.PromptText)
	case domain.ModeText:
		return c.GenerateFromText(ctx, req.PromptText, string(req.Style))
	default:
		return nil, domain.ErrValidation(fmt.Sprintf("unknown input mode %q", req.Mode))
	}
}

// GenerateFromImage posts a multipart form with the image and the prompt.
// The prompt field is always sent, empty when no prompt was given.
func (c *Client) GenerateFromImage(ctx context.Context, image []byte, filename, prompt string) (*domain.Artifact, error) {
	if filename == "" {
		filename = "upload"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("failed to write prompt field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.post(ctx, PathGenerate, w.FormDataContentType(), &body)
}

// GenerateFromText posts {"prompt": ..., "style": ...}.
func (c *Client) GenerateFromText(ctx context.Context, prompt, style string) (*domain.Artifact, error) {
	body, err := json.Marshal(textRequest{Prompt: prompt, Style: style})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.post(ctx, PathGenerateFromText, "application/json", bytes.NewReader(body))
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*domain.Artifact, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ErrNetwork(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrNetwork(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ErrService(resp.StatusCode, string(respBody))
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(respBody)
	}

	return &domain.Artifact{Data: respBody, MIMEType: mimeType}, nil
}
