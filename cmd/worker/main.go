package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoanglb/legal-qa-assistant/internal/bootstrap"
	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/logging"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/metrics"
)

const serviceName = "legal-qa-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSONLogger(serviceName, "error").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	m := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: m.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeArticleCrawled(ctx, func(handlerCtx context.Context, articleID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		m.StartArticle()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, articleID)
		m.FinishArticle(serviceName, time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		logger.Error("worker subscribe", "error", err)
		os.Exit(1)
	}
}
