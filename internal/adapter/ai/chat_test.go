package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabio-pecora/NextStep.AI/internal/config"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:          "test",
		ChatBaseURL:     baseURL,
		ChatModel:       "gpt-4.1-mini",
		ChatTimeout:     5 * time.Second,
		ModelBaseURL:    baseURL,
		EmbeddingsModel: "all-minilm",
		SentimentModel:  "twitter-roberta-base-sentiment",
	}
}

func TestChatClient_SendsJSONModeRequest(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4.1-mini", req["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"ok": true}`}}},
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.ChatAPIKey = "secret"
	out, err := NewChatClient(cfg).ChatJSON(context.Background(), "system", "user", 256)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, out)
}

func TestChatClient_CleansFencedResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "```json\n{\"score\": 70}\n```"}}},
		})
	}))
	defer srv.Close()

	out, err := NewChatClient(testConfig(srv.URL)).ChatJSON(context.Background(), "s", "u", 256)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 70}`, out)
}

func TestChatClient_RetriesOn5xx(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{}`}}},
		})
	}))
	defer srv.Close()

	_, err := NewChatClient(testConfig(srv.URL)).ChatJSON(context.Background(), "s", "u", 256)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestChatClient_DoesNotRetryOn4xx(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewChatClient(testConfig(srv.URL)).ChatJSON(context.Background(), "s", "u", 256)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestChatClient_EmptyChoicesIsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := NewChatClient(testConfig(srv.URL)).ChatJSON(context.Background(), "s", "u", 256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}
