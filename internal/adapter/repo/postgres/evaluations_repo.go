package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// EvaluationRepo stores finished evaluation records.
type EvaluationRepo struct{ Pool PgxPool }

func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

// Create inserts the record and returns its generated id. Strengths and
// improvements land as JSONB so rubric output keeps its list shape.
func (r *EvaluationRepo) Create(ctx domain.Context, rec domain.EvaluationRecord) (string, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "evaluations"),
		attribute.String("evaluation.source", rec.Source),
	)

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	q := `INSERT INTO evaluations
	(id, question, user_answer, relevance_score, confidence_score, final_score, feedback_text, strengths, improvements, source, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.Pool.Exec(ctx, q,
		id, rec.Question, rec.UserAnswer,
		rec.RelevanceScore, rec.ConfidenceScore, rec.FinalScore,
		rec.FeedbackText, rec.Strengths, rec.Improvements,
		rec.Source, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=evaluation.create: %w", err)
	}
	return id, nil
}
