package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/hoanglb/legal-qa-assistant/internal/adapters/http"
	"github.com/hoanglb/legal-qa-assistant/internal/bootstrap"
	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/logging"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/metrics"
)

const serviceName = "legal-qa-api"

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

	m := metrics.NewHTTPServerMetrics(serviceName)
	askUC := app.AskUC.WithObserver(m.PipelineObserver(serviceName))

	router := httpadapter.NewRouter(askUC, app.IngestUC, app.Repo, app.ImportUC, logger, m, serviceName).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown", "error", err)
	}
}
