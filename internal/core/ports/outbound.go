package ports

import (
	"context"
	"io"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

// DenseEncoder produces the fixed-length semantic embedding of a text.
type DenseEncoder interface {
	EncodeDense(ctx context.Context, text string) ([]float32, error)
}

// SparseEncoder produces the lexical term-weight embedding of a text.
type SparseEncoder interface {
	EncodeSparse(ctx context.Context, text string) (domain.SparseVector, error)
}

// VectorSearcher runs one ranked search per modality against the index.
// Both lists come from the same logical collection; fusion happens in the
// retrieval use case.
type VectorSearcher interface {
	SearchDense(ctx context.Context, vector []float32, limit int) ([]domain.IndexHit, error)
	SearchSparse(ctx context.Context, vector domain.SparseVector, limit int) ([]domain.IndexHit, error)
}

// IndexWriter upserts points into the vector index.
type IndexWriter interface {
	UpsertPoints(ctx context.Context, points []domain.IndexPoint) error
}

// CrossEncoder scores query/document pairs jointly, one score per document,
// same order as the input documents.
type CrossEncoder interface {
	Score(ctx context.Context, query string, docs []string) ([]float64, error)
}

// AnswerGenerator creates the final user-facing answer from the assembled
// context block.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextBlock string) (string, error)
}

// ResultCache memoizes ranked result lists by fingerprint. A miss and a read
// failure are both reported through found=false plus the error; callers must
// never fail a request on cache errors.
type ResultCache interface {
	Get(ctx context.Context, key string) (results []domain.RankedResult, found bool, err error)
	Put(ctx context.Context, key string, results []domain.RankedResult) error
	Clear(ctx context.Context) error
}

// ArticleRepository persists crawled article state.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	UpdateStatus(ctx context.Context, id string, status domain.ArticleStatus, errMessage string) error
	ListAll(ctx context.Context) ([]domain.Article, error)
}

// ObjectStorage stores raw crawled article JSON and imported source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes article indexing events.
type MessageQueue interface {
	PublishArticleCrawled(ctx context.Context, articleID string) error
	SubscribeArticleCrawled(ctx context.Context, handler func(context.Context, string) error) error
}

// ArticleCrawler fetches and parses one legal QA article page.
type ArticleCrawler interface {
	Crawl(ctx context.Context, url string) (*domain.Article, error)
}

// TextExtractor extracts plain text from a stored source file.
type TextExtractor interface {
	Extract(ctx context.Context, storagePath, filename string) (string, error)
}

// Chunker splits extracted text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// CorpusExporter writes the article corpus to a tabular file.
type CorpusExporter interface {
	Export(articles []domain.Article, path string) error
}
