package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callshield/backend/internal/config"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.m4a")
	require.NoError(t, os.WriteFile(path, []byte("fake audio bytes"), 0o600))
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	var gotModel, gotFormat, gotLanguage, gotPrompt, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotLanguage = r.FormValue("language")
		gotPrompt = r.FormValue("prompt")
		gotAuth = r.Header.Get("Authorization")

		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello there","language":"english","duration":3.5}`))
	}))
	defer srv.Close()

	transcriber := NewOpenAISTT(config.STTConfig{
		OpenAIKey:     "test-key",
		OpenAIBaseURL: srv.URL,
	})

	result, err := transcriber.Transcribe(context.Background(), Request{
		FilePath: writeTempAudio(t),
		Prompt:   "This is a phone call recording.",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", result.Text)
	assert.Equal(t, "english", result.Language)
	assert.InDelta(t, 3.5, result.Duration, 0.001)

	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "verbose_json", gotFormat)
	assert.Empty(t, gotLanguage, "language must be omitted for auto-detect")
	assert.Equal(t, "This is a phone call recording.", gotPrompt)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestTranscribePropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unsupported format"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	transcriber := NewOpenAISTT(config.STTConfig{OpenAIBaseURL: srv.URL})

	_, err := transcriber.Transcribe(context.Background(), Request{FilePath: writeTempAudio(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestTranscribeMissingFile(t *testing.T) {
	transcriber := NewOpenAISTT(config.STTConfig{})

	_, err := transcriber.Transcribe(context.Background(), Request{FilePath: "/nonexistent/audio.m4a"})
	assert.Error(t, err)
}
