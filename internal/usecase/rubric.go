package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

// Final-score weights for the rubric path. The rubric already penalizes poor
// structure inside its relevance score, so relevance carries more weight here
// than in the local pipeline. Do not unify these with the local weights.
const (
	rubricRelevanceWeight  = 0.7
	rubricConfidenceWeight = 0.3
)

// Each free-text input is truncated before it is sent upstream to bound cost
// and latency.
const rubricInputBudget = 800

// At most this many strengths and improvements are kept from the upstream
// response.
const maxRubricBullets = 3

const rubricSystemPrompt = "You are a strict interview coach. " +
	"Given an interview question, a short description of an ideal answer, " +
	"and a candidate's answer, judge the answer against a STAR-based rubric " +
	"(Situation, Task, Action, Result) and return:\n" +
	"- relevance_score: how well the answer addresses the question (0 to 100)\n" +
	"- confidence_score: how confident, clear, and structured the answer sounds (0 to 100)\n" +
	"Be deliberately conservative: typical answers score 55-70, and only " +
	"exceptional answers exceed 80. Then provide short bullet style strengths " +
	"and improvements, phrased in a friendly, encouraging tone."

// rubricResponse is the JSON shape the upstream must return. Scores are
// pointers so that a missing field is distinguishable from zero.
type rubricResponse struct {
	RelevanceScore  *float64 `json:"relevance_score"`
	ConfidenceScore *float64 `json:"confidence_score"`
	FinalScore      *float64 `json:"final_score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

// RubricEvaluator delegates scoring to the remote reasoning service. Every
// failure mode, transport, parse, or schema, surfaces as ErrRemoteService so
// the caller can fall back to the local pipeline with a single check.
type RubricEvaluator struct {
	chat      domain.ChatClient
	maxTokens int
}

func NewRubricEvaluator(chat domain.ChatClient, maxTokens int) RubricEvaluator {
	return RubricEvaluator{chat: chat, maxTokens: maxTokens}
}

func (e RubricEvaluator) Evaluate(ctx domain.Context, question, idealAnswer, userAnswer string) (domain.EvaluationRecord, error) {
	userPrompt := fmt.Sprintf(
		"Analyze the following interview answer and return a JSON object with fields: "+
			"relevance_score (0-100), confidence_score (0-100), strengths (list of strings), "+
			"improvements (list of strings).\n\n"+
			"Question: %s\n\nIdeal answer description: %s\n\nCandidate answer: %s",
		textx.Truncate(question, rubricInputBudget),
		textx.Truncate(idealAnswer, rubricInputBudget),
		textx.Truncate(userAnswer, rubricInputBudget),
	)

	out, err := e.chat.ChatJSON(ctx, rubricSystemPrompt, userPrompt, e.maxTokens)
	if err != nil {
		return domain.EvaluationRecord{}, fmt.Errorf("%w: rubric call: %v", domain.ErrRemoteService, err)
	}

	var resp rubricResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return domain.EvaluationRecord{}, fmt.Errorf("%w: rubric response parse: %v", domain.ErrRemoteService, err)
	}
	if resp.RelevanceScore == nil || resp.ConfidenceScore == nil {
		return domain.EvaluationRecord{}, fmt.Errorf("%w: rubric response missing scores", domain.ErrRemoteService)
	}

	rel := clamp(*resp.RelevanceScore, 0, 100)
	conf := clamp(*resp.ConfidenceScore, 0, 100)

	// The upstream may supply its own blended score; trust it when present.
	var final float64
	if resp.FinalScore != nil {
		final = clamp(*resp.FinalScore, 0, 100)
	} else {
		final = rubricRelevanceWeight*rel + rubricConfidenceWeight*conf
	}

	strengths := clipBullets(resp.Strengths, maxRubricBullets)
	improvements := clipBullets(resp.Improvements, maxRubricBullets)

	return domain.EvaluationRecord{
		Question:        question,
		UserAnswer:      userAnswer,
		RelevanceScore:  round2(rel),
		ConfidenceScore: round2(conf),
		FinalScore:      round2(final),
		FeedbackText:    joinRubricFeedback(strengths, improvements),
		Strengths:       strengths,
		Improvements:    improvements,
		Source:          SourceRubric,
	}, nil
}

func clipBullets(items []string, max int) []string {
	out := make([]string, 0, max)
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}

func joinRubricFeedback(strengths, improvements []string) string {
	var parts []string
	if len(strengths) > 0 {
		parts = append(parts, "Strengths: "+strings.Join(strengths, "; "))
	}
	if len(improvements) > 0 {
		parts = append(parts, "Improvements: "+strings.Join(improvements, "; "))
	}
	return strings.Join(parts, " ")
}
