// Package ai implements clients for the two AI backends: the remote
// reasoning service used for rubric evaluation and report generation, and
// the local inference sidecar serving the embedding and sentiment models.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/ai/tokencount"
	"github.com/fabio-pecora/NextStep.AI/internal/adapter/observability"
	"github.com/fabio-pecora/NextStep.AI/internal/config"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint. It
// retries transient failures with exponential backoff; 4xx responses other
// than 429 are permanent.
type ChatClient struct {
	cfg     config.Config
	httpc   *http.Client
	cleaner *ResponseCleaner
}

func NewChatClient(cfg config.Config) *ChatClient {
	return &ChatClient{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.ChatTimeout},
		cleaner: NewResponseCleaner(),
	}
}

func (c *ChatClient) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON sends a system+user prompt pair and returns the completion
// content, cleaned of markdown fences and surrounding prose so callers can
// decode it directly.
func (c *ChatClient) ChatJSON(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:      maxTokens,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("op=ai.ChatJSON: marshal request: %w", err)
	}

	if usage, uerr := tokencount.CalculateUsageDefault(systemPrompt, userPrompt, "", c.cfg.ChatModel, "chat"); uerr == nil {
		slog.Debug("chat request prepared",
			slog.String("model", c.cfg.ChatModel),
			slog.Int("prompt_tokens", usage.PromptTokens),
			slog.Int("max_tokens", maxTokens))
	}

	var out chatResponse
	op := func() error {
		start := time.Now()
		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ChatBaseURL+"/chat/completions", bytes.NewReader(body))
		if rerr != nil {
			return backoff.Permanent(rerr)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.ChatAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.ChatAPIKey)
		}

		resp, derr := c.httpc.Do(req)
		observability.AIRequestsTotal.WithLabelValues("chat", "completions").Inc()
		observability.AIRequestDuration.WithLabelValues("chat", "completions").Observe(time.Since(start).Seconds())
		if derr != nil {
			return derr
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("chat provider rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			slog.Warn("chat provider 4xx",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(snippet)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("chat provider non-2xx", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if derr := json.NewDecoder(resp.Body).Decode(&out); derr != nil {
			return fmt.Errorf("decode chat response: %w", derr)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.backoffConfig(), ctx)); err != nil {
		return "", fmt.Errorf("op=ai.ChatJSON: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=ai.ChatJSON: empty choices")
	}

	content := out.Choices[0].Message.Content
	cleaned, err := c.cleaner.CleanJSONResponse(content)
	if err != nil {
		return "", fmt.Errorf("op=ai.ChatJSON: clean response: %w", err)
	}
	return cleaned, nil
}
