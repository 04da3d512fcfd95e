package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoanglb/legal-qa-assistant/internal/bootstrap"
	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/logging"
)

const serviceName = "legal-qa-export"

func main() {
	out := flag.String("out", "corpus.xlsx", "output workbook path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.NewTextLogger(serviceName, "error").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewTextLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	count, err := app.ExportUC.Export(ctx, *out)
	if err != nil {
		logger.Error("export corpus", "error", err)
		os.Exit(1)
	}
	logger.Info("corpus exported", "articles", count, "path", *out)
}
