// Package extractor routes uploaded documents to the text extractor that
// matches their file extension.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/extractor/pdftext"
	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/extractor/plaintext"
)

type Selector struct {
	plain ports.TextExtractor
	pdf   ports.TextExtractor
}

func NewSelector(storage ports.ObjectStorage) *Selector {
	return &Selector{
		plain: plaintext.NewExtractor(storage),
		pdf:   pdftext.NewExtractor(storage),
	}
}

func (s *Selector) Extract(ctx context.Context, storagePath, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return s.pdf.Extract(ctx, storagePath, filename)
	case ".txt", ".md", ".text", "":
		return s.plain.Extract(ctx, storagePath, filename)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported file type: %s", filename))
	}
}
