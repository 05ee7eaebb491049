package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"apin-chat/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"Hi there"}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("secret", srv.URL, "meta-llama/Llama-3.1-8B-Instruct")
	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
	}, llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http error", http.StatusUnauthorized, `{"error":"bad token"}`, llm.ErrRejected},
		{"api error", http.StatusOK, `{"error":{"message":"model overloaded"}}`, llm.ErrRejected},
		{"no choices", http.StatusOK, `{"choices":[]}`, llm.ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHuggingFaceProvider("k", srv.URL, "m").Generate(context.Background(), "hello")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHuggingFaceProvider("k", url, "m").Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, llm.ErrUnreachable)
	assert.Equal(t, llm.KindUnavailable, llm.NewGenerationError(err).Kind)
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewHuggingFaceProvider("k", srv.URL, "m")
	p.Client.Timeout = 50 * time.Millisecond

	_, err := p.Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.False(t, errors.Is(err, llm.ErrUnreachable))
	assert.Equal(t, llm.KindTimeout, llm.NewGenerationError(err).Kind)
}

func TestAvailability(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		a := NewHuggingFaceProvider("", "http://127.0.0.1:1", "m").Availability(context.Background())
		assert.False(t, a.Available)
		assert.Equal(t, llm.ReasonOther, a.Reason)
	})

	t.Run("reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.Write([]byte(`{"data":[{"id":"m"}]}`))
		}))
		defer srv.Close()

		assert.Equal(t, llm.Available(), NewHuggingFaceProvider("k", srv.URL, "m").Availability(context.Background()))
	})

	t.Run("rejected key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		a := NewHuggingFaceProvider("k", srv.URL, "m").Availability(context.Background())
		assert.False(t, a.Available)
		assert.Equal(t, llm.ReasonOther, a.Reason)
		assert.NotEmpty(t, a.Detail)
	})
}

func TestChat_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte(`{"cho`))
	}))
	defer srv.Close()

	_, err := NewHuggingFaceProvider("k", srv.URL, "m").Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read response")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
