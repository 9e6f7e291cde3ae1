package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// CachingModelProvider memoizes embeddings in front of another provider.
// The same question and ideal-answer texts are embedded on every evaluation
// of that question, so hot texts stay served from memory. Sentiment is not
// cached: answers rarely repeat and the classification is cheap.
type CachingModelProvider struct {
	inner domain.ModelProvider
	max   int

	mu      sync.Mutex
	vectors map[string][]float32
	order   []string
}

// NewCachingModelProvider wraps inner with an embedding cache holding at
// most max entries, evicted oldest-first.
func NewCachingModelProvider(inner domain.ModelProvider, max int) *CachingModelProvider {
	if max <= 0 {
		max = 1
	}
	return &CachingModelProvider{
		inner:   inner,
		max:     max,
		vectors: make(map[string][]float32, max),
	}
}

func embedKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *CachingModelProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missTexts []string
	var missIdx []int
	c.mu.Lock()
	for i, t := range texts {
		keys[i] = embedKey(t)
		if vec, ok := c.vectors[keys[i]]; ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}
	c.mu.Unlock()

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, domain.ErrEncoding
	}

	c.mu.Lock()
	for j, i := range missIdx {
		out[i] = vecs[j]
		key := keys[i]
		if _, ok := c.vectors[key]; ok {
			continue
		}
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.vectors, oldest)
		}
		c.vectors[key] = vecs[j]
		c.order = append(c.order, key)
	}
	c.mu.Unlock()

	return out, nil
}

func (c *CachingModelProvider) ClassifySentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	return c.inner.ClassifySentiment(ctx, text)
}

// Len reports the number of cached embeddings.
func (c *CachingModelProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}
