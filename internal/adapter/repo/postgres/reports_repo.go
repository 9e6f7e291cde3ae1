package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// ReportRepo stores finished prep and resume reports as JSONB documents.
// The reports are display artifacts; querying into them is not needed, so
// the whole normalized document goes into one column.
type ReportRepo struct{ Pool PgxPool }

func NewReportRepo(p PgxPool) *ReportRepo { return &ReportRepo{Pool: p} }

// CreatePrep inserts a prep report and returns its generated id.
func (r *ReportRepo) CreatePrep(ctx domain.Context, req domain.PrepRequest, report domain.PrepReport) (string, error) {
	tracer := otel.Tracer("repo.reports")
	ctx, span := tracer.Start(ctx, "reports.CreatePrep")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "prep_reports"),
		attribute.String("report.mode", report.Mode),
	)

	doc, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("op=report.create_prep: marshal: %w", err)
	}

	id := uuid.NewString()
	q := `INSERT INTO prep_reports (id, job_title, company_name, candidate_name, mode, report, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = r.Pool.Exec(ctx, q,
		id, req.JobTitle, req.CompanyName, req.CandidateName, report.Mode, doc, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=report.create_prep: %w", err)
	}
	return id, nil
}

// CreateResume inserts a resume review report and returns its generated id.
func (r *ReportRepo) CreateResume(ctx domain.Context, report domain.ResumeReport) (string, error) {
	tracer := otel.Tracer("repo.reports")
	ctx, span := tracer.Start(ctx, "reports.CreateResume")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "resume_reports"),
	)

	doc, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("op=report.create_resume: marshal: %w", err)
	}

	id := uuid.NewString()
	q := `INSERT INTO resume_reports (id, target_role, used_job_description, report, created_at)
	VALUES ($1,$2,$3,$4,$5)`
	_, err = r.Pool.Exec(ctx, q,
		id, report.TargetRole, report.UsedJobDescription, doc, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=report.create_resume: %w", err)
	}
	return id, nil
}
