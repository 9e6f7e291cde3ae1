package usecase

import (
	"context"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

type fakeModels struct {
	embed    func(texts []string) ([][]float32, error)
	classify func(text string) (domain.Sentiment, error)
}

func (f fakeModels) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return f.embed(texts)
}

func (f fakeModels) ClassifySentiment(_ context.Context, text string) (domain.Sentiment, error) {
	return f.classify(text)
}

// embedByText assigns each distinct text a deterministic vector, so equal
// texts always embed identically.
func embedByText(vectors map[string][]float32) func([]string) ([][]float32, error) {
	return func(texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = vectors[t]
		}
		return out, nil
	}
}

func neutralClassifier(score float64) func(string) (domain.Sentiment, error) {
	return func(string) (domain.Sentiment, error) {
		return domain.Sentiment{Label: domain.SentimentNeutral, Score: score}, nil
	}
}

type fakeChat struct {
	chatJSON func(system, user string, maxTokens int) (string, error)
}

func (f fakeChat) ChatJSON(_ context.Context, system, user string, maxTokens int) (string, error) {
	return f.chatJSON(system, user, maxTokens)
}

type fakeTranscriber struct {
	transcribe func(filename string, audio []byte) (string, error)
}

func (f fakeTranscriber) Transcribe(_ context.Context, filename string, audio []byte) (string, error) {
	return f.transcribe(filename, audio)
}

type fakeEvalRepo struct {
	created []domain.EvaluationRecord
	id      string
	err     error
}

func (f *fakeEvalRepo) Create(_ context.Context, rec domain.EvaluationRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, rec)
	return f.id, nil
}

type fakeReportRepo struct {
	preps   []domain.PrepReport
	resumes []domain.ResumeReport
	err     error
}

func (f *fakeReportRepo) CreatePrep(_ context.Context, _ domain.PrepRequest, report domain.PrepReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.preps = append(f.preps, report)
	return "prep-1", nil
}

func (f *fakeReportRepo) CreateResume(_ context.Context, report domain.ResumeReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.resumes = append(f.resumes, report)
	return "resume-1", nil
}
