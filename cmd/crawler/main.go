package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hoanglb/legal-qa-assistant/internal/bootstrap"
	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/core/usecase"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/crawler/thuvienphapluat"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/logging"
)

const serviceName = "legal-qa-crawler"

func main() {
	urlFile := flag.String("urls", "", "path to a file with one article URL per line")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.NewTextLogger(serviceName, "error").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewTextLogger(serviceName, cfg.LogLevel)

	urls, err := readURLs(*urlFile, flag.Args())
	if err != nil {
		logger.Error("read urls", "error", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		logger.Error("no urls given; pass -urls <file> or urls as arguments")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	crawlUC := usecase.NewCrawlUseCase(
		thuvienphapluat.New(cfg.CrawlerRatePerSecond),
		app.IngestUC,
		logger,
	)

	crawled, err := crawlUC.CrawlAll(ctx, urls)
	if err != nil {
		logger.Error("crawl", "error", err, "crawled", crawled)
		os.Exit(1)
	}
	logger.Info("crawl finished", "crawled", crawled, "total", len(urls))
}

func readURLs(path string, args []string) ([]string, error) {
	urls := make([]string, 0, len(args))
	for _, arg := range args {
		if u := strings.TrimSpace(arg); u != "" {
			urls = append(urls, u)
		}
	}
	if path == "" {
		return urls, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
