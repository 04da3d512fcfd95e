package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// ImportDocumentUseCase indexes one uploaded legal source document outside
// the crawl flow: store, extract, chunk, embed, upsert. Import is
// synchronous; dataset files arrive one at a time.
type ImportDocumentUseCase struct {
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	chunker   ports.Chunker
	dense     ports.DenseEncoder
	sparse    ports.SparseEncoder
	index     ports.IndexWriter
}

func NewImportDocumentUseCase(
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	dense ports.DenseEncoder,
	sparse ports.SparseEncoder,
	index ports.IndexWriter,
) *ImportDocumentUseCase {
	return &ImportDocumentUseCase{
		storage:   storage,
		extractor: extractor,
		chunker:   chunker,
		dense:     dense,
		sparse:    sparse,
		index:     index,
	}
}

func (uc *ImportDocumentUseCase) Import(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.ImportedDocument, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("imports/%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, storageKey, filename)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import document", errors.New("no chunks produced"))
	}

	createAt := now.Format(time.RFC3339)
	points := make([]domain.IndexPoint, 0, len(chunks))
	for _, chunk := range chunks {
		denseVec, err := uc.dense.EncodeDense(ctx, chunk)
		if err != nil {
			return nil, domain.WrapError(domain.ErrEncodingUnavailable, "dense encode chunk", err)
		}
		sparseVec, err := uc.sparse.EncodeSparse(ctx, chunk)
		if err != nil {
			return nil, domain.WrapError(domain.ErrEncodingUnavailable, "sparse encode chunk", err)
		}
		points = append(points, domain.IndexPoint{
			ID:         uuid.NewString(),
			Dense:      denseVec,
			Sparse:     sparseVec,
			RawContext: chunk,
			CreateAt:   createAt,
			ArticleID:  id,
		})
	}

	if err := uc.index.UpsertPoints(ctx, points); err != nil {
		return nil, fmt.Errorf("upsert document points: %w", err)
	}

	return &domain.ImportedDocument{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Chunks:      len(points),
		CreatedAt:   now,
	}, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
