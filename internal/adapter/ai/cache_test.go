package ai

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

type countingProvider struct {
	embedCalls    atomic.Int32
	embeddedTexts [][]string
	classifyCalls atomic.Int32
}

func (p *countingProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	p.embedCalls.Add(1)
	p.embeddedTexts = append(p.embeddedTexts, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (p *countingProvider) ClassifySentiment(_ context.Context, _ string) (domain.Sentiment, error) {
	p.classifyCalls.Add(1)
	return domain.Sentiment{Label: domain.SentimentNeutral, Score: 0.5}, nil
}

func TestCachingModelProvider_ServesRepeatsFromCache(t *testing.T) {
	t.Parallel()
	inner := &countingProvider{}
	cache := NewCachingModelProvider(inner, 16)

	first, err := cache.Embed(context.Background(), []string{"question", "ideal"})
	require.NoError(t, err)
	second, err := cache.Embed(context.Background(), []string{"question", "ideal"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.embedCalls.Load())
}

func TestCachingModelProvider_OnlyMissesReachInner(t *testing.T) {
	t.Parallel()
	inner := &countingProvider{}
	cache := NewCachingModelProvider(inner, 16)

	_, err := cache.Embed(context.Background(), []string{"question", "ideal"})
	require.NoError(t, err)
	vecs, err := cache.Embed(context.Background(), []string{"question", "ideal", "new answer"})
	require.NoError(t, err)

	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{float32(len("question"))}, vecs[0])
	assert.Equal(t, []float32{float32(len("new answer"))}, vecs[2])
	require.Equal(t, int32(2), inner.embedCalls.Load())
	assert.Equal(t, []string{"new answer"}, inner.embeddedTexts[1])
}

func TestCachingModelProvider_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()
	inner := &countingProvider{}
	cache := NewCachingModelProvider(inner, 2)

	_, err := cache.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	// "a" was evicted; embedding it again is a miss
	_, err = cache.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.embedCalls.Load())
}

func TestCachingModelProvider_SentimentPassesThrough(t *testing.T) {
	t.Parallel()
	inner := &countingProvider{}
	cache := NewCachingModelProvider(inner, 16)

	for i := 0; i < 3; i++ {
		_, err := cache.ClassifySentiment(context.Background(), "same text")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), inner.classifyCalls.Load())
}
