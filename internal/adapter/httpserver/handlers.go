package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/observability"
	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/internal/questionbank"
	"github.com/fabio-pecora/NextStep.AI/internal/usecase"
)

// AnswerEvaluator scores a candidate answer against a question.
type AnswerEvaluator interface {
	EvaluateText(ctx domain.Context, q domain.Question, userAnswer string) (domain.EvaluationRecord, error)
	EvaluateAudio(ctx domain.Context, q domain.Question, filename string, audio []byte) (domain.EvaluationRecord, string, error)
}

// PrepGenerator produces a full interview preparation report.
type PrepGenerator interface {
	Generate(ctx domain.Context, req domain.PrepRequest) (domain.PrepReport, error)
}

// ResumeReviewer produces a structured resume review.
type ResumeReviewer interface {
	Review(ctx domain.Context, resumeText, targetRole, jobDescription string) (domain.ResumeReport, error)
}

// Server carries the handler dependencies. Construct with NewServer.
type Server struct {
	answers  AnswerEvaluator
	prep     PrepGenerator
	resume   ResumeReviewer
	bank     *questionbank.Bank
	validate *validator.Validate

	maxAudioBytes int64
	ready         func() error
}

// NewServer wires handlers to the usecase services. maxAudioMB bounds the
// request body on the audio route; ready is polled by the readiness probe
// and may be nil.
func NewServer(answers AnswerEvaluator, prep PrepGenerator, resume ResumeReviewer, bank *questionbank.Bank, maxAudioMB int64, ready func() error) *Server {
	return &Server{
		answers:       answers,
		prep:          prep,
		resume:        resume,
		bank:          bank,
		validate:      validator.New(),
		maxAudioBytes: maxAudioMB << 20,
		ready:         ready,
	}
}

type evaluateAnswerRequest struct {
	QuestionID  string `json:"question_id" validate:"omitempty,max=64"`
	Question    string `json:"question" validate:"required_without=QuestionID,max=4000"`
	IdealAnswer string `json:"ideal_answer" validate:"required_with=Question,max=16000"`
	Answer      string `json:"answer" validate:"required,max=40000"`
}

type evaluateAudioResponse struct {
	Transcript string                  `json:"transcript"`
	Evaluation domain.EvaluationRecord `json:"evaluation"`
}

type prepReportRequest struct {
	JobTitle       string `json:"job_title" validate:"required,max=300"`
	CompanyName    string `json:"company_name" validate:"max=300"`
	JobDescription string `json:"job_description" validate:"max=40000"`
	CandidateName  string `json:"candidate_name" validate:"max=300"`
	Resume         string `json:"resume" validate:"max=60000"`
}

type resumeReviewRequest struct {
	Resume         string `json:"resume" validate:"required,max=60000"`
	TargetRole     string `json:"target_role" validate:"max=300"`
	JobDescription string `json:"job_description" validate:"max=40000"`
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: decode body: %v", domain.ErrInvalidArgument, err), nil)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
		return false
	}
	return true
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

// resolveQuestion turns the request into a concrete question, either by bank
// lookup or from the inline pair.
func (s *Server) resolveQuestion(req evaluateAnswerRequest) (domain.Question, error) {
	if req.QuestionID != "" {
		return s.bank.Get(req.QuestionID)
	}
	if strings.TrimSpace(req.IdealAnswer) == "" {
		return domain.Question{}, fmt.Errorf("%w: ideal_answer is required with an inline question", domain.ErrInvalidArgument)
	}
	return domain.Question{Question: req.Question, IdealAnswer: req.IdealAnswer}, nil
}

// EvaluateAnswer handles POST /v1/answers.
func (s *Server) EvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	var req evaluateAnswerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	q, err := s.resolveQuestion(req)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	rec, err := s.answers.EvaluateText(r.Context(), q, req.Answer)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	observeRecord(rec)
	writeJSON(w, http.StatusOK, rec)
}

// EvaluateAudioAnswer handles POST /v1/answers/audio (multipart form with an
// "audio" file part and either a question_id or question + ideal_answer).
func (s *Server) EvaluateAudioAnswer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxAudioBytes)
	if err := r.ParseMultipartForm(s.maxAudioBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: fmt.Sprintf("audio upload exceeds %d bytes", s.maxAudioBytes),
			}})
			return
		}
		writeError(w, r, fmt.Errorf("%w: parse multipart form: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	q, err := s.resolveQuestion(evaluateAnswerRequest{
		QuestionID:  r.FormValue("question_id"),
		Question:    r.FormValue("question"),
		IdealAnswer: r.FormValue("ideal_answer"),
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: audio file part is required", domain.ErrInvalidArgument), nil)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: read audio: %v", domain.ErrInvalidArgument, err), nil)
		return
	}

	rec, transcript, err := s.answers.EvaluateAudio(r.Context(), q, header.Filename, audio)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	observeRecord(rec)
	writeJSON(w, http.StatusOK, evaluateAudioResponse{Transcript: transcript, Evaluation: rec})
}

func observeRecord(rec domain.EvaluationRecord) {
	observability.ObserveEvaluation(rec.Source, rec.RelevanceScore, rec.ConfidenceScore, rec.FinalScore)
	if rec.Source == usecase.SourceLocal {
		observability.RubricFallbacksTotal.Inc()
	}
}

// GeneratePrepReport handles POST /v1/prep-reports.
func (s *Server) GeneratePrepReport(w http.ResponseWriter, r *http.Request) {
	var req prepReportRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	report, err := s.prep.Generate(r.Context(), domain.PrepRequest{
		JobTitle:       req.JobTitle,
		CompanyName:    req.CompanyName,
		JobDescription: req.JobDescription,
		CandidateName:  req.CandidateName,
		ResumeText:     req.Resume,
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	observability.ReportsGeneratedTotal.WithLabelValues("prep", reportMode(report.Offline)).Inc()
	writeJSON(w, http.StatusOK, report)
}

// ReviewResume handles POST /v1/resume-reviews.
func (s *Server) ReviewResume(w http.ResponseWriter, r *http.Request) {
	var req resumeReviewRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	report, err := s.resume.Review(r.Context(), req.Resume, req.TargetRole, req.JobDescription)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	observability.ReportsGeneratedTotal.WithLabelValues("resume", reportMode(report.Offline)).Inc()
	writeJSON(w, http.StatusOK, report)
}

func reportMode(offline bool) string {
	if offline {
		return "offline"
	}
	return "remote"
}

// ListQuestions handles GET /v1/questions.
func (s *Server) ListQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questions": s.bank.All()})
}

// GetQuestion handles GET /v1/questions/{id}.
func (s *Server) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.bank.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Healthz reports process liveness.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports dependency readiness.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(); err != nil {
			slog.Warn("readiness probe failed", slog.Any("error", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
