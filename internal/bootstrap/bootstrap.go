// Package bootstrap wires infrastructure into the use cases for each
// process entry point.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoanglb/legal-qa-assistant/internal/config"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
	"github.com/hoanglb/legal-qa-assistant/internal/core/usecase"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/cache/diskcache"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/chunking"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/encoder/bm25"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/export/excel"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/extractor"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/llm/ollama"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/queue/nats"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/repository/postgres"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/rerank/tei"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/resilience"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/storage/localfs"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.ArticleRepository

	AskUC     *usecase.AskUseCase
	IngestUC  ports.ArticleIngestor
	ProcessUC ports.ArticleProcessor
	ImportUC  ports.DocumentImporter
	ExportUC  *usecase.ExportCorpusUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewArticleRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	policy := resilience.DefaultPolicy()

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, policy, logger)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, policy)
	denseEncoder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	sparseEncoder := bm25.New()

	vectorDB := qdrant.New(qdrant.Config{
		BaseURL:         cfg.QdrantURL,
		Collection:      cfg.QdrantCollection,
		DenseModel:      cfg.OllamaEmbedModel,
		SparseModel:     cfg.SparseModelName,
		DenseVectorSize: cfg.DenseVectorSize,
	})
	if err := vectorDB.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure vector collection: %w", err)
	}

	crossEncoder := tei.New(cfg.RerankerURL, cfg.RerankerModel, policy)

	resultCache, err := diskcache.New(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("init result cache: %w", err)
	}

	encoder := usecase.NewQueryEncoder(denseEncoder, sparseEncoder)
	retriever := usecase.NewHybridRetriever(vectorDB, cfg.FusionRRFK)
	reranker := usecase.NewReranker(crossEncoder)

	askUC := usecase.NewAskUseCase(encoder, retriever, reranker, generator, resultCache, cfg.CorpusVersion, logger)
	ingestUC := usecase.NewIngestArticleUseCase(repo, storage, queue)
	processUC := usecase.NewProcessArticleUseCase(repo, denseEncoder, sparseEncoder, vectorDB)
	importUC := usecase.NewImportDocumentUseCase(
		storage,
		extractor.NewSelector(storage),
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		denseEncoder,
		sparseEncoder,
		vectorDB,
	)
	exportUC := usecase.NewExportCorpusUseCase(repo, excel.New())

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		AskUC:     askUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ImportUC:  importUC,
		ExportUC:  exportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
