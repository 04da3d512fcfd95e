package usecase

import (
	"sort"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const defaultRRFK = 60

// fuseRRF merges two per-modality ranked lists with Reciprocal Rank Fusion:
// each candidate scores the sum of 1/(k+rank) over the lists it appears in,
// rank 1-based. Ties keep first-appearance order, which is the order the
// index returned the hits in. Scores depend only on ranks, so swapping which
// list is added first never changes them.
func fuseRRF(denseHits, sparseHits []domain.IndexHit, rrfK int) []domain.Candidate {
	if rrfK <= 0 {
		rrfK = defaultRRFK
	}

	order := make([]string, 0, len(denseHits)+len(sparseHits))
	acc := make(map[string]*domain.Candidate, len(denseHits)+len(sparseHits))
	addList := func(hits []domain.IndexHit) {
		for i, hit := range hits {
			c, ok := acc[hit.ID]
			if !ok {
				c = &domain.Candidate{
					ID:       hit.ID,
					Text:     hit.Text,
					CreateAt: hit.CreateAt,
				}
				if c.CreateAt == "" {
					c.CreateAt = "N/A"
				}
				acc[hit.ID] = c
				order = append(order, hit.ID)
			}
			if c.Text == "" {
				c.Text = hit.Text
			}
			c.FusedScore += 1.0 / float64(rrfK+i+1)
		}
	}

	addList(denseHits)
	addList(sparseHits)

	out := make([]domain.Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FusedScore > out[j].FusedScore
	})
	return out
}

func capCandidates(candidates []domain.Candidate, limit int) []domain.Candidate {
	if limit <= 0 || len(candidates) <= limit {
		return candidates
	}
	return candidates[:limit]
}
