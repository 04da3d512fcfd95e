package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/hoanglb/legal-qa-assistant/internal/adapters/mcp"
	"github.com/hoanglb/legal-qa-assistant/internal/bootstrap"
	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/logging"
)

const serviceName = "legal-qa-mcp"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewTextLogger(serviceName, "error").Error("load config", "error", err)
		os.Exit(1)
	}
	// Stdout is the MCP transport; logs must stay on stderr.
	logger := logging.NewTextLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := mcpadapter.NewServer(app.AskUC).Serve(ctx); err != nil {
		logger.Error("mcp server", "error", err)
		os.Exit(1)
	}
}
