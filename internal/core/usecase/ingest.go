package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// IngestArticleUseCase accepts a crawled article: raw JSON into object
// storage, metadata into the repository, then an indexing event for the
// worker.
type IngestArticleUseCase struct {
	repo    ports.ArticleRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestArticleUseCase(
	repo ports.ArticleRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestArticleUseCase {
	return &IngestArticleUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestArticleUseCase) Ingest(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	if article == nil || strings.TrimSpace(article.URL) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest article", errors.New("article url is required"))
	}
	if len(article.QAPairs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest article", errors.New("article has no qa pairs"))
	}

	now := time.Now().UTC()
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CrawledAt.IsZero() {
		article.CrawledAt = now
	}
	article.StoragePath = fmt.Sprintf("articles/%s.json", article.ID)
	article.Status = domain.StatusCrawled
	article.UpdatedAt = now

	raw, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("marshal article: %w", err)
	}
	if err := uc.storage.Save(ctx, article.StoragePath, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("save article to object storage: %w", err)
	}

	if err := uc.repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article metadata: %w", err)
	}

	if err := uc.queue.PublishArticleCrawled(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("publish indexing event: %w", err)
	}

	return article, nil
}
