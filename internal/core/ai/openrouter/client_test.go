package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kondate-planner/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	prompt := "ユーザーの要求: 和食\n開始日: 2024-03-01 (金)"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, prompt, req.Messages[0].Content)
		assert.Equal(t, int32(8192), req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"30,31,32"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", "test/model", srv.URL, provider.Params{MaxOutputTokens: 8192})
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "30,31,32", out)
	assert.Equal(t, "test/model", client.Model())
	assert.NoError(t, client.Close())
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit"}}`, "rate limited"},
		{"plain error", http.StatusBadGateway, `bad gateway`, "502"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, "empty content"},
		{"invalid json", http.StatusOK, `not json`, "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewClient("sk-test", "m", srv.URL, provider.Params{})
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "m", "", provider.Params{})
	assert.Error(t, err)
}
