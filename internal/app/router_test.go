package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/httpserver"
	"github.com/fabio-pecora/NextStep.AI/internal/config"
	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/internal/questionbank"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"*"}, ParseOrigins("*"))
	assert.Equal(t, []string{"*"}, ParseOrigins(" , "))
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, ParseOrigins(" https://a.test, https://b.test "))
}

type noopAnswers struct{}

func (noopAnswers) EvaluateText(domain.Context, domain.Question, string) (domain.EvaluationRecord, error) {
	return domain.EvaluationRecord{}, nil
}

func (noopAnswers) EvaluateAudio(domain.Context, domain.Question, string, []byte) (domain.EvaluationRecord, string, error) {
	return domain.EvaluationRecord{}, "", nil
}

type noopPrep struct{}

func (noopPrep) Generate(domain.Context, domain.PrepRequest) (domain.PrepReport, error) {
	return domain.PrepReport{}, nil
}

type noopResume struct{}

func (noopResume) Review(domain.Context, string, string, string) (domain.ResumeReport, error) {
	return domain.ResumeReport{}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	bank, err := questionbank.New([]domain.Question{
		{ID: "q1", Question: "q", IdealAnswer: "a"},
	})
	require.NoError(t, err)
	srv := httpserver.NewServer(noopAnswers{}, noopPrep{}, noopResume{}, bank, 1, nil)
	cfg, err := config.Load()
	require.NoError(t, err)
	return BuildRouter(cfg, srv)
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()
	r := testRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/v1/questions"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouterGetQuestionByID(t *testing.T) {
	t.Parallel()
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/questions/q1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/questions/zz", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouterSetsRequestID(t *testing.T) {
	t.Parallel()
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestReadiness(t *testing.T) {
	t.Parallel()
	require.NoError(t, Readiness(stubPinger{})())

	err := Readiness(stubPinger{err: errors.New("refused")})()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ping")
}
