// Package usecase contains the evaluation and report-generation services.
// Services depend on the small interfaces defined in the domain package and
// stay free of transport or storage concerns.
package usecase

import (
	"fmt"
	"math"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

// Relevance blends two cosine similarities; agreement with the ideal answer
// dominates agreement with the question itself.
const (
	idealSimWeight    = 0.7
	questionSimWeight = 0.3
)

// Confidence blends the classifier verdict with a length factor. Answers
// shorter than fullCreditWords words are discounted proportionally.
const (
	sentimentWindow = 512
	fullCreditWords = 40

	sentimentWeight = 0.6
	lengthWeight    = 0.4
)

// RelevanceScorer measures how well a user answer matches the ideal answer
// and the question, via embedding cosine similarity.
type RelevanceScorer struct {
	models domain.ModelProvider
}

func NewRelevanceScorer(models domain.ModelProvider) RelevanceScorer {
	return RelevanceScorer{models: models}
}

// Score returns a relevance score in [0,100]. Cosine similarity lands in
// [-1,1]; the blended value is shifted and scaled onto the percentage range.
func (s RelevanceScorer) Score(ctx domain.Context, question, idealAnswer, userAnswer string) (float64, error) {
	vecs, err := s.models.Embed(ctx, []string{idealAnswer, userAnswer, question})
	if err != nil {
		return 0, fmt.Errorf("%w: embed: %v", domain.ErrEncoding, err)
	}
	if len(vecs) != 3 {
		return 0, fmt.Errorf("%w: embed returned %d vectors, want 3", domain.ErrEncoding, len(vecs))
	}
	simIdeal := cosineSimilarity(vecs[0], vecs[1])
	simQuestion := cosineSimilarity(vecs[2], vecs[1])
	blended := idealSimWeight*simIdeal + questionSimWeight*simQuestion
	return clamp((blended+1)/2*100, 0, 100), nil
}

// ConfidenceScorer estimates how confidently an answer is delivered from the
// sentiment of its opening and its length.
type ConfidenceScorer struct {
	models domain.ModelProvider
}

func NewConfidenceScorer(models domain.ModelProvider) ConfidenceScorer {
	return ConfidenceScorer{models: models}
}

// Score returns a confidence score in [0,100]. Only the first
// sentimentWindow characters are classified; the length factor sees the
// whole answer.
func (s ConfidenceScorer) Score(ctx domain.Context, userAnswer string) (float64, error) {
	sent, err := s.models.ClassifySentiment(ctx, textx.Truncate(userAnswer, sentimentWindow))
	if err != nil {
		return 0, fmt.Errorf("%w: sentiment: %v", domain.ErrEncoding, err)
	}
	var base float64
	switch sent.Label {
	case domain.SentimentPositive:
		base = 0.8 + 0.2*sent.Score
	case domain.SentimentNeutral:
		base = 0.5 + 0.3*sent.Score
	default:
		base = 0.2 + 0.3*(1-sent.Score)
	}
	lengthFactor := math.Min(float64(textx.WordCount(userAnswer))/fullCreditWords, 1.0)
	return clamp((sentimentWeight*base+lengthWeight*lengthFactor)*100, 0, 100), nil
}

// cosineSimilarity returns 0 when either vector has zero norm, so that
// degenerate embeddings yield a neutral score instead of NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimals for presentation and storage.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
