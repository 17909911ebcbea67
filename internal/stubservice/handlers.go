package stubservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

type textRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.forcedFailure(w, r) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "image is required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "failed to read image", err)
		return
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		s.writeError(w, r, http.StatusUnsupportedMediaType, domain.ErrUnsupportedMedia.Error(), nil)
		return
	}

	prompt := r.FormValue("prompt")
	AddLogField(r.Context(), "filename", header.Filename)
	AddLogField(r.Context(), "prompt", prompt)
	s.writeImage(w, r, fmt.Sprintf("photo|%s|%d|%s", header.Filename, len(data), prompt))
}

func (s *Server) handleGenerateFromText(w http.ResponseWriter, r *http.Request) {
	if s.forcedFailure(w, r) {
		return
	}

	var req textRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, r, http.StatusBadRequest, "prompt is required", nil)
		return
	}
	if req.Style == "" {
		req.Style = string(domain.DefaultStyle)
	}

	AddLogField(r.Context(), "style", req.Style)
	s.writeImage(w, r, "text|"+req.Style+"|"+req.Prompt)
}

func (s *Server) writeImage(w http.ResponseWriter, r *http.Request, seed string) {
	if err := r.Context().Err(); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "generation timed out", err)
		return
	}
	img, err := RenderPlaceholder(seed, s.opts.ImageSize)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to render image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// forcedFailure writes the configured or requested failure and reports
// whether it did.
func (s *Server) forcedFailure(w http.ResponseWriter, r *http.Request) bool {
	status, body := s.opts.FailStatus, s.opts.FailBody
	if v := r.Header.Get(FailHeader); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil || code < 400 || code > 599 {
			code = http.StatusInternalServerError
		}
		status = code
		body = r.Header.Get(FailBodyHeader)
	}
	if status == 0 {
		return false
	}
	if body == "" {
		body = http.StatusText(status)
	}
	s.writeError(w, r, status, body, errors.New("forced failure"))
	return true
}

// writeError sends message verbatim as a plain-text body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, cause error) {
	AddError(r.Context(), cause)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, message)
}
