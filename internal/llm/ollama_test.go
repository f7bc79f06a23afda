package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate_SendsNonStreamedRequest(t *testing.T) {
	var got ollamaGenerateReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"model":"deepseek-r1:8b","prompt":"hi there","stream":false}`, string(raw))
		assert.NoError(t, json.Unmarshal(raw, &got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"deepseek-r1:8b","response":"Hello!","done":true,"eval_count":3}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL)
	resp, err := p.Generate(context.Background(), GenerateRequest{Model: "deepseek-r1:8b", Prompt: "hi there"})
	require.NoError(t, err)

	assert.False(t, got.Stream)
	assert.Equal(t, "Hello!", resp.Content)
	assert.Equal(t, "ollama", resp.Provider)
	assert.Equal(t, "deepseek-r1:8b", resp.Model)
}

func TestOllamaGenerate_EmptyCompletionIsNotMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"","done":true}`))
	}))
	defer srv.Close()

	resp, err := NewOllamaProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Content)
}

func TestOllamaGenerate_MissingResponseField(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok without response", http.StatusOK, `{"done":true}`},
		{"null response", http.StatusOK, `{"response":null,"done":true}`},
		{"model not found", http.StatusNotFound, `{"error":"model 'deepseek-r1:8b' not found"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "deepseek-r1:8b"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoCompletion), "got %v", err)
		})
	}
}

func TestOllamaGenerate_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "m"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoCompletion))
	assert.Contains(t, err.Error(), "ollama decode (status 502)")
}

func TestOllamaGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllamaProvider(url).Generate(context.Background(), GenerateRequest{Model: "m"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoCompletion))
	assert.Contains(t, err.Error(), "ollama generate")
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	assert.NoError(t, NewOllamaProvider(srv.URL).Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := NewOllamaProvider(down.URL).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}
