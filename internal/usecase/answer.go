package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// AnswerService orchestrates a single evaluation: try the rubric path first,
// fall back to the local pipeline on any remote failure, then persist the
// record best-effort. The user always receives a complete evaluation as long
// as at least one path is available.
type AnswerService struct {
	local       LocalEvaluator
	rubric      RubricEvaluator
	transcriber domain.Transcriber
	evaluations domain.EvaluationRepository
}

func NewAnswerService(local LocalEvaluator, rubric RubricEvaluator, tr domain.Transcriber, repo domain.EvaluationRepository) AnswerService {
	return AnswerService{local: local, rubric: rubric, transcriber: tr, evaluations: repo}
}

// EvaluateText scores a typed answer against a question. The returned record
// reports which path produced it via its Source field.
func (s AnswerService) EvaluateText(ctx domain.Context, q domain.Question, userAnswer string) (domain.EvaluationRecord, error) {
	rec, err := s.rubric.Evaluate(ctx, q.Question, q.IdealAnswer, userAnswer)
	if err != nil {
		if !errors.Is(err, domain.ErrRemoteService) {
			return domain.EvaluationRecord{}, err
		}
		slog.Default().WarnContext(ctx, "rubric evaluation failed, falling back to local scoring",
			slog.Any("error", err))
		rec, err = s.local.Evaluate(ctx, q.Question, q.IdealAnswer, userAnswer)
		if err != nil {
			return domain.EvaluationRecord{}, err
		}
	}

	// Storage failures must not affect the score already computed.
	if s.evaluations != nil {
		id, perr := s.evaluations.Create(ctx, rec)
		if perr != nil {
			slog.Default().WarnContext(ctx, "failed to persist evaluation",
				slog.Any("error", perr))
		} else {
			rec.ID = id
		}
	}
	return rec, nil
}

// EvaluateAudio transcribes the audio first, then scores the transcript like
// any typed answer. The transcript is returned alongside the record so the
// caller can echo it back to the user.
func (s AnswerService) EvaluateAudio(ctx domain.Context, q domain.Question, filename string, audio []byte) (domain.EvaluationRecord, string, error) {
	if s.transcriber == nil {
		return domain.EvaluationRecord{}, "", fmt.Errorf("%w: transcription not configured", domain.ErrTranscription)
	}
	text, err := s.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return domain.EvaluationRecord{}, "", err
	}
	rec, err := s.EvaluateText(ctx, q, text)
	return rec, text, err
}
