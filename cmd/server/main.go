// Command server starts the NextStep answer-evaluation and report HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/ai"
	"github.com/fabio-pecora/NextStep.AI/internal/adapter/httpserver"
	"github.com/fabio-pecora/NextStep.AI/internal/adapter/observability"
	"github.com/fabio-pecora/NextStep.AI/internal/adapter/repo/postgres"
	"github.com/fabio-pecora/NextStep.AI/internal/adapter/transcriber/whisper"
	"github.com/fabio-pecora/NextStep.AI/internal/app"
	"github.com/fabio-pecora/NextStep.AI/internal/config"
	"github.com/fabio-pecora/NextStep.AI/internal/questionbank"
	"github.com/fabio-pecora/NextStep.AI/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	evalRepo := postgres.NewEvaluationRepo(pool)
	reportRepo := postgres.NewReportRepo(pool)

	bank, err := questionbank.Load(cfg.QuestionsPath)
	if err != nil {
		slog.Error("question bank load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("question bank loaded", slog.Int("questions", bank.Len()))

	// Embedding results are cached; sentiment calls pass through.
	models := ai.NewCachingModelProvider(ai.NewModelClient(cfg), cfg.EmbedCacheSize)
	chat := ai.NewChatClient(cfg)
	transcriber := whisper.New(cfg.WhisperURL, cfg.WhisperTimeout)

	answerSvc := usecase.NewAnswerService(
		usecase.NewLocalEvaluator(models),
		usecase.NewRubricEvaluator(chat, cfg.ChatMaxTokens),
		transcriber,
		evalRepo,
	)
	prepSvc := usecase.NewPrepService(chat, reportRepo, cfg.ChatMaxTokens).
		WithNormalizer(usecase.Normalizer{Repaired: func(section, repair string) {
			observability.ReportRepairsTotal.WithLabelValues(section, repair).Inc()
		}})
	resumeSvc := usecase.NewResumeService(chat, reportRepo, cfg.ChatMaxTokens)

	srv := httpserver.NewServer(answerSvc, prepSvc, resumeSvc, bank, cfg.MaxAudioMB, app.Readiness(pool))
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
