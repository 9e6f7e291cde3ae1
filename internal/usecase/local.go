package usecase

import (
	"strings"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

// Final-score weights for the local pipeline. These are deliberately distinct
// from the rubric weights in rubric.go.
const (
	localRelevanceWeight  = 0.6
	localConfidenceWeight = 0.4
)

// Answers under this many words earn an extra nudge to elaborate.
const expandNudgeWords = 30

// Evaluation record sources.
const (
	SourceLocal  = "local"
	SourceRubric = "rubric"
)

// LocalEvaluator scores an answer using only the local models: embedding
// relevance plus sentiment-derived confidence. It never calls the upstream
// reasoning service, which makes it the fallback path when the rubric
// evaluator is unavailable.
type LocalEvaluator struct {
	relevance  RelevanceScorer
	confidence ConfidenceScorer
}

func NewLocalEvaluator(models domain.ModelProvider) LocalEvaluator {
	return LocalEvaluator{
		relevance:  NewRelevanceScorer(models),
		confidence: NewConfidenceScorer(models),
	}
}

// Evaluate produces a complete evaluation record with Source set to "local".
func (e LocalEvaluator) Evaluate(ctx domain.Context, question, idealAnswer, userAnswer string) (domain.EvaluationRecord, error) {
	rel, err := e.relevance.Score(ctx, question, idealAnswer, userAnswer)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	conf, err := e.confidence.Score(ctx, userAnswer)
	if err != nil {
		return domain.EvaluationRecord{}, err
	}
	final := localRelevanceWeight*rel + localConfidenceWeight*conf
	return domain.EvaluationRecord{
		Question:        question,
		UserAnswer:      userAnswer,
		RelevanceScore:  round2(rel),
		ConfidenceScore: round2(conf),
		FinalScore:      round2(final),
		FeedbackText:    buildFeedback(userAnswer, rel, conf),
		Source:          SourceLocal,
	}, nil
}

// buildFeedback maps the two scores onto short banded sentences. The bands
// and wording are part of the product contract and must stay stable.
func buildFeedback(userAnswer string, relevance, confidence float64) string {
	var parts []string
	switch {
	case relevance > 80:
		parts = append(parts, "Your answer is highly relevant to the question.")
	case relevance > 60:
		parts = append(parts, "Your answer is mostly relevant, but you could align it more closely with what the question is asking.")
	default:
		parts = append(parts, "Your answer only partially addresses the question. Try to focus more on what is being asked.")
	}
	switch {
	case confidence > 80:
		parts = append(parts, "You sound confident and clear in your explanation.")
	case confidence > 60:
		parts = append(parts, "Your communication is okay, but you could be more structured and assertive.")
	default:
		parts = append(parts, "Your answer comes across as hesitant or incomplete. Try speaking more clearly and giving concrete examples.")
	}
	if textx.WordCount(userAnswer) < expandNudgeWords {
		parts = append(parts, "Consider expanding your answer with more detail or examples.")
	}
	return strings.Join(parts, " ")
}
