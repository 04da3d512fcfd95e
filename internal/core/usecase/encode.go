package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// QueryEncoder turns query text into both index representations. The two
// encodings are independent, so they run as a fork-join pair: both legs are
// issued at once and the first failure cancels the other.
type QueryEncoder struct {
	dense  ports.DenseEncoder
	sparse ports.SparseEncoder
}

func NewQueryEncoder(dense ports.DenseEncoder, sparse ports.SparseEncoder) *QueryEncoder {
	return &QueryEncoder{dense: dense, sparse: sparse}
}

func (e *QueryEncoder) Encode(ctx context.Context, text string) (domain.EmbeddingPair, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingPair{}, domain.WrapError(domain.ErrInvalidQuery, "encode query", errors.New("empty query text"))
	}

	var pair domain.EmbeddingPair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vector, err := e.dense.EncodeDense(gctx, text)
		if err != nil {
			return domain.WrapError(domain.ErrEncodingUnavailable, "dense encode", err)
		}
		if len(vector) == 0 {
			return domain.WrapError(domain.ErrEncodingUnavailable, "dense encode", errors.New("empty embedding"))
		}
		pair.Dense = vector
		return nil
	})
	g.Go(func() error {
		vector, err := e.sparse.EncodeSparse(gctx, text)
		if err != nil {
			return domain.WrapError(domain.ErrEncodingUnavailable, "sparse encode", err)
		}
		pair.Sparse = vector
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.EmbeddingPair{}, err
	}
	return pair, nil
}
