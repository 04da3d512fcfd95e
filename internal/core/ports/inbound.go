package ports

import (
	"context"
	"io"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for the retrieve-rerank-generate
// pipeline.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string, mode domain.RetrievalMode, topK, rerankTopK int) (*domain.Answer, error)
	Retrieve(ctx context.Context, question string, mode domain.RetrievalMode, topK, rerankTopK int) ([]domain.RankedResult, error)
	ClearCache(ctx context.Context) error
}

// ArticleIngestor accepts a crawled article into the corpus.
type ArticleIngestor interface {
	Ingest(ctx context.Context, article *domain.Article) (*domain.Article, error)
}

// ArticleProcessor is the asynchronous indexing contract used by the worker.
type ArticleProcessor interface {
	ProcessByID(ctx context.Context, articleID string) error
}

// ArticleReader is the read model for article metadata/state.
type ArticleReader interface {
	GetByID(ctx context.Context, id string) (*domain.Article, error)
}

// DocumentImporter indexes one uploaded legal source document.
type DocumentImporter interface {
	Import(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.ImportedDocument, error)
}
