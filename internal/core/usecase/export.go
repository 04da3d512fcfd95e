package usecase

import (
	"context"
	"fmt"

	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// ExportCorpusUseCase dumps the article corpus to a tabular file.
type ExportCorpusUseCase struct {
	repo     ports.ArticleRepository
	exporter ports.CorpusExporter
}

func NewExportCorpusUseCase(repo ports.ArticleRepository, exporter ports.CorpusExporter) *ExportCorpusUseCase {
	return &ExportCorpusUseCase{repo: repo, exporter: exporter}
}

// Export returns the number of exported articles.
func (uc *ExportCorpusUseCase) Export(ctx context.Context, path string) (int, error) {
	articles, err := uc.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list articles: %w", err)
	}
	if err := uc.exporter.Export(articles, path); err != nil {
		return 0, fmt.Errorf("export corpus: %w", err)
	}
	return len(articles), nil
}
