package artapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
	"github.com/tjfontaine/ghibli-studio/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nresult")

func TestClient_GenerateFromText_Wire(t *testing.T) {
	var gotPath, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	art, err := c.GenerateFromText(context.Background(), "a peaceful forest with kodama spirits", "totoro")
	require.NoError(t, err)

	assert.Equal(t, PathGenerateFromText, gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"prompt":"a peaceful forest with kodama spirits","style":"totoro"}`, gotBody)
	assert.Equal(t, pngBytes, art.Data)
	assert.Equal(t, "image/png", art.MIMEType)
}

func TestClient_GenerateFromImage_Multipart(t *testing.T) {
	var gotImage []byte
	var gotPrompt, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathGenerate {
			http.Error(w, "wrong path", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotImage, _ = io.ReadAll(f)
		gotFilename = hdr.Filename
		gotPrompt = r.FormValue("prompt")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	art, err := c.Generate(context.Background(), domain.GenerationRequest{
		Mode:       domain.ModePhoto,
		ImageData:  []byte("\xff\xd8\xffjpeg-bytes"),
		ImageName:  "portrait.jpg",
		PromptText: "soft evening light",
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("\xff\xd8\xffjpeg-bytes"), gotImage)
	assert.Equal(t, "portrait.jpg", gotFilename)
	assert.Equal(t, "soft evening light", gotPrompt)
	assert.Equal(t, "image/png", art.MIMEType)
}

func TestClient_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "model overloaded")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.GenerateFromText(context.Background(), "castle", "howl")
	require.Error(t, err)

	genErr, ok := domain.AsGenerationError(err)
	require.True(t, ok, "expected *GenerationError, got %T", err)
	assert.Equal(t, domain.ErrorTypeService, genErr.Type)
	assert.Equal(t, http.StatusInternalServerError, genErr.StatusCode)
	assert.Equal(t, "model overloaded", genErr.Body)
	assert.Contains(t, genErr.Error(), "500")
	assert.Contains(t, genErr.Error(), "model overloaded")
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(url))
	_, err := c.GenerateFromText(context.Background(), "castle", "howl")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeNetwork))
	assert.Equal(t, domain.NetworkFailureMessage, err.Error())
}

func TestClient_UnknownMode(t *testing.T) {
	c := NewClient()
	_, err := c.Generate(context.Background(), domain.GenerationRequest{Mode: "video"})
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}

func TestClient_UserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithUserAgent("ghibli-studio/1.0"))
	_, err := c.GenerateFromText(context.Background(), "castle", "howl")
	require.NoError(t, err)
	assert.Equal(t, "ghibli-studio/1.0", ua)
}

func TestClient_Replay_TextSuccess(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "artapi_text_success")
	defer cleanup()

	c := NewClient(WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	art, err := c.GenerateFromText(context.Background(), "a flying castle in the sky at sunset", "howl")
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), art.Data)
	assert.Equal(t, "image/png", art.MIMEType)
}

func TestClient_Replay_PhotoOverloaded(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "artapi_photo_overloaded")
	defer cleanup()

	c := NewClient(WithHTTPClient(testutil.VCRHTTPClient(recorder)))
	_, err := c.GenerateFromImage(context.Background(), pngBytes, "me.png", "")
	require.Error(t, err)

	genErr, ok := domain.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, 500, genErr.StatusCode)
	assert.Equal(t, "model overloaded", genErr.Body)
}
