package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/observability"
	"github.com/fabio-pecora/NextStep.AI/internal/config"
	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// ModelClient talks to the local inference sidecar serving the embedding
// and sentiment models over an OpenAI-compatible surface. The sidecar keeps
// the models resident, so the process-wide load-once guarantee lives there;
// this client is stateless and safe for concurrent use.
type ModelClient struct {
	cfg   config.Config
	httpc *http.Client
}

func NewModelClient(cfg config.Config) *ModelClient {
	return &ModelClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.ChatTimeout},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (m *ModelClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embeddingsResponse
	err := m.post(ctx, "embeddings", embeddingsRequest{Model: m.cfg.EmbeddingsModel, Input: texts}, &out)
	if err != nil {
		return nil, fmt.Errorf("op=ai.Embed: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=ai.Embed: got %d vectors for %d inputs", len(out.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("op=ai.Embed: vector index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

type classifyRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifySentiment classifies the text into positive/neutral/negative.
// Empty input never reaches the model: it classifies deterministically as
// fully negative, which keeps the empty-answer confidence floor stable.
func (m *ModelClient) ClassifySentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Sentiment{Label: domain.SentimentNegative, Score: 1.0}, nil
	}

	var out classifyResponse
	err := m.post(ctx, "classify", classifyRequest{Model: m.cfg.SentimentModel, Text: text}, &out)
	if err != nil {
		return domain.Sentiment{}, fmt.Errorf("op=ai.ClassifySentiment: %w", err)
	}

	label := domain.SentimentLabel(strings.ToLower(out.Label))
	switch label {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
	default:
		return domain.Sentiment{}, fmt.Errorf("op=ai.ClassifySentiment: unknown label %q", out.Label)
	}
	if out.Score < 0 || out.Score > 1 {
		return domain.Sentiment{}, fmt.Errorf("op=ai.ClassifySentiment: score %f out of range", out.Score)
	}
	return domain.Sentiment{Label: label, Score: out.Score}, nil
}

func (m *ModelClient) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := m.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	op := func() error {
		start := time.Now()
		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.ModelBaseURL+"/"+endpoint, bytes.NewReader(body))
		if rerr != nil {
			return backoff.Permanent(rerr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, derr := m.httpc.Do(req)
		observability.AIRequestsTotal.WithLabelValues("models", endpoint).Inc()
		observability.AIRequestDuration.WithLabelValues("models", endpoint).Observe(time.Since(start).Seconds())
		if derr != nil {
			return derr
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%s status %d", endpoint, resp.StatusCode)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("%s status %d: %s", endpoint, resp.StatusCode, snippet))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s status %d", endpoint, resp.StatusCode)
		}
		if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, derr)
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(expo, ctx))
}
