package usecase

import (
	"context"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// HybridRetriever issues one capped search per modality and fuses the two
// ranked lists client-side. It is stateless: every call works only on its
// inputs.
type HybridRetriever struct {
	searcher ports.VectorSearcher
	rrfK     int
}

func NewHybridRetriever(searcher ports.VectorSearcher, rrfK int) *HybridRetriever {
	if rrfK <= 0 {
		rrfK = defaultRRFK
	}
	return &HybridRetriever{searcher: searcher, rrfK: rrfK}
}

// Retrieve returns the fused top topK candidates. An unreachable index is an
// error; an index that answers with zero hits is a valid empty result.
func (r *HybridRetriever) Retrieve(ctx context.Context, embeddings domain.EmbeddingPair, topK int) ([]domain.Candidate, error) {
	if topK < 1 {
		topK = 1
	}

	denseHits, err := r.searcher.SearchDense(ctx, embeddings.Dense, topK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "dense search", err)
	}

	// A query that tokenizes to nothing has an empty sparse vector; the
	// lexical leg then contributes no list and fusion degrades to dense.
	var sparseHits []domain.IndexHit
	if !embeddings.Sparse.IsEmpty() {
		sparseHits, err = r.searcher.SearchSparse(ctx, embeddings.Sparse, topK)
		if err != nil {
			return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "sparse search", err)
		}
	}

	return capCandidates(fuseRRF(denseHits, sparseHits, r.rrfK), topK), nil
}
