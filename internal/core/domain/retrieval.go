package domain

// SparseVector is a lexical term-weight mapping in Qdrant wire form:
// parallel slices sorted by term index.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

func (v SparseVector) IsEmpty() bool {
	return len(v.Indices) == 0
}

// EmbeddingPair carries both query representations for one retrieval call.
type EmbeddingPair struct {
	Dense  []float32
	Sparse SparseVector
}

// Candidate is one retrieved document after fusion.
type Candidate struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	FusedScore float64 `json:"fused_score"`
	CreateAt   string  `json:"create_at"`
}

// RankedResult is the unit cached and returned to callers. Rank is 1-based
// and dense; order is rerank score descending with fused order on ties.
type RankedResult struct {
	Rank          int      `json:"rank"`
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	RerankScore   float64  `json:"rerank_score"`
	OriginalScore *float64 `json:"original_score"`
	CreateAt      string   `json:"create_at"`
}

// Answer is the user-facing response with its supporting sources.
type Answer struct {
	Text     string         `json:"text"`
	Sources  []RankedResult `json:"sources"`
	Mode     RetrievalMode  `json:"mode"`
	CacheHit bool           `json:"cache_hit"`
}
