package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// ProcessArticleUseCase is the worker side of ingestion: load the article,
// build one index point per QA pair with both vector modalities, upsert.
type ProcessArticleUseCase struct {
	repo   ports.ArticleRepository
	dense  ports.DenseEncoder
	sparse ports.SparseEncoder
	index  ports.IndexWriter
}

func NewProcessArticleUseCase(
	repo ports.ArticleRepository,
	dense ports.DenseEncoder,
	sparse ports.SparseEncoder,
	index ports.IndexWriter,
) *ProcessArticleUseCase {
	return &ProcessArticleUseCase{
		repo:   repo,
		dense:  dense,
		sparse: sparse,
		index:  index,
	}
}

func (uc *ProcessArticleUseCase) ProcessByID(ctx context.Context, articleID string) error {
	if err := uc.repo.UpdateStatus(ctx, articleID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.indexArticle(ctx, articleID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, articleID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, articleID, domain.StatusIndexed, ""); err != nil {
		return fmt.Errorf("set status=indexed: %w", err)
	}
	return nil
}

func (uc *ProcessArticleUseCase) indexArticle(ctx context.Context, articleID string) error {
	article, err := uc.repo.GetByID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("fetch article by id: %w", err)
	}
	if len(article.QAPairs) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "index article", errors.New("article has no qa pairs"))
	}

	createAt := article.CrawledAt.UTC().Format(time.RFC3339)
	points := make([]domain.IndexPoint, 0, len(article.QAPairs))
	for _, pair := range article.QAPairs {
		raw := pair.ContextText()
		if raw == "" {
			continue
		}

		denseVec, err := uc.dense.EncodeDense(ctx, raw)
		if err != nil {
			return domain.WrapError(domain.ErrEncodingUnavailable, "dense encode qa pair", err)
		}
		sparseVec, err := uc.sparse.EncodeSparse(ctx, raw)
		if err != nil {
			return domain.WrapError(domain.ErrEncodingUnavailable, "sparse encode qa pair", err)
		}

		points = append(points, domain.IndexPoint{
			ID:         uuid.NewString(),
			Dense:      denseVec,
			Sparse:     sparseVec,
			RawContext: raw,
			CreateAt:   createAt,
			ArticleID:  article.ID,
			Question:   pair.Question,
		})
	}
	if len(points) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "index article", errors.New("no indexable qa pairs"))
	}

	if err := uc.index.UpsertPoints(ctx, points); err != nil {
		return fmt.Errorf("upsert article points: %w", err)
	}
	return nil
}
