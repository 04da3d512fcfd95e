package usecase

import (
	"context"
	"log/slog"

	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// CrawlUseCase walks a URL list through the crawler and hands each parsed
// article to the ingestor. Individual page failures are logged and skipped;
// only context cancellation stops the run.
type CrawlUseCase struct {
	crawler  ports.ArticleCrawler
	ingestor ports.ArticleIngestor
	logger   *slog.Logger
}

func NewCrawlUseCase(crawler ports.ArticleCrawler, ingestor ports.ArticleIngestor, logger *slog.Logger) *CrawlUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlUseCase{
		crawler:  crawler,
		ingestor: ingestor,
		logger:   logger,
	}
}

// CrawlAll returns the number of articles ingested.
func (uc *CrawlUseCase) CrawlAll(ctx context.Context, urls []string) (int, error) {
	ingested := 0
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return ingested, err
		}

		article, err := uc.crawler.Crawl(ctx, url)
		if err != nil {
			uc.logger.Warn("crawl failed, skipping page", "url", url, "error", err)
			continue
		}

		if _, err := uc.ingestor.Ingest(ctx, article); err != nil {
			uc.logger.Warn("ingest failed, skipping article", "url", url, "error", err)
			continue
		}
		ingested++
		uc.logger.Info("article ingested", "url", url, "qa_pairs", len(article.QAPairs))
	}
	return ingested, nil
}
