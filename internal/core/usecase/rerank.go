package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// Reranker re-scores a bounded head of the fused candidates with a
// cross-encoder. Cross-encoder cost grows linearly with candidate count, so
// only the first rerankTopK candidates are sent; the tail keeps its fused
// order so the output stays a permutation of the input.
type Reranker struct {
	scorer ports.CrossEncoder
}

func NewReranker(scorer ports.CrossEncoder) *Reranker {
	return &Reranker{scorer: scorer}
}

func (r *Reranker) Rerank(ctx context.Context, queryText string, candidates []domain.Candidate, rerankTopK int) ([]domain.RankedResult, error) {
	if len(candidates) == 0 {
		return []domain.RankedResult{}, nil
	}
	head := rerankTopK
	if head <= 0 || head > len(candidates) {
		head = len(candidates)
	}

	docs := make([]string, head)
	for i := 0; i < head; i++ {
		docs[i] = candidates[i].Text
	}

	scores, err := r.scorer.Score(ctx, queryText, docs)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRerankUnavailable, "cross-encoder score", err)
	}
	if len(scores) != head {
		return nil, domain.WrapError(domain.ErrRerankUnavailable, "cross-encoder score",
			fmt.Errorf("got %d scores for %d documents", len(scores), head))
	}

	// Sort head indices by new score descending; SliceStable keeps the
	// fused order on score ties.
	idx := make([]int, head)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]domain.RankedResult, 0, len(candidates))
	for rank, i := range idx {
		c := candidates[i]
		fused := c.FusedScore
		out = append(out, domain.RankedResult{
			Rank:          rank + 1,
			ID:            c.ID,
			Text:          c.Text,
			RerankScore:   scores[i],
			OriginalScore: &fused,
			CreateAt:      c.CreateAt,
		})
	}
	for i := head; i < len(candidates); i++ {
		c := candidates[i]
		fused := c.FusedScore
		out = append(out, domain.RankedResult{
			Rank:          i + 1,
			ID:            c.ID,
			Text:          c.Text,
			RerankScore:   c.FusedScore,
			OriginalScore: &fused,
			CreateAt:      c.CreateAt,
		})
	}
	return out, nil
}

// FusedOrder is the no-rerank rendition used by fast mode and by the
// degraded fallback when the cross-encoder is unreachable: rank equals fused
// rank and the rerank score equals the fused score.
func FusedOrder(candidates []domain.Candidate) []domain.RankedResult {
	out := make([]domain.RankedResult, 0, len(candidates))
	for i, c := range candidates {
		fused := c.FusedScore
		out = append(out, domain.RankedResult{
			Rank:          i + 1,
			ID:            c.ID,
			Text:          c.Text,
			RerankScore:   c.FusedScore,
			OriginalScore: &fused,
			CreateAt:      c.CreateAt,
		})
	}
	return out
}
