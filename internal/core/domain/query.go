package domain

import (
	"errors"
	"strings"
)

var errEmptyQueryText = errors.New("empty query text")

type RetrievalMode string

const (
	ModeFast     RetrievalMode = "fast"
	ModeBalanced RetrievalMode = "balanced"
	ModeAccurate RetrievalMode = "accurate"
)

// ModeParams is the fixed configuration tuple behind one retrieval mode.
type ModeParams struct {
	TopK           int
	RerankTopK     int
	MaxContextDocs int
	RerankEnabled  bool
}

var modeParams = map[RetrievalMode]ModeParams{
	ModeFast:     {TopK: 10, RerankTopK: 5, MaxContextDocs: 2, RerankEnabled: false},
	ModeBalanced: {TopK: 15, RerankTopK: 8, MaxContextDocs: 3, RerankEnabled: true},
	ModeAccurate: {TopK: 20, RerankTopK: 10, MaxContextDocs: 3, RerankEnabled: true},
}

func ParseRetrievalMode(s string) (RetrievalMode, bool) {
	switch RetrievalMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFast:
		return ModeFast, true
	case ModeBalanced, "":
		return ModeBalanced, true
	case ModeAccurate:
		return ModeAccurate, true
	default:
		return "", false
	}
}

func (m RetrievalMode) Params() ModeParams {
	if p, ok := modeParams[m]; ok {
		return p
	}
	return modeParams[ModeBalanced]
}

// Query is an immutable resolved request: text plus the effective search
// parameters after mode defaults and caller overrides are applied.
type Query struct {
	Text       string
	Mode       RetrievalMode
	TopK       int
	RerankTopK int
}

// NewQuery validates the text and resolves parameters. Zero or negative
// overrides fall back to the mode defaults.
func NewQuery(text string, mode RetrievalMode, topK, rerankTopK int) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, WrapError(ErrInvalidQuery, "new query", errEmptyQueryText)
	}

	params := mode.Params()
	if topK <= 0 {
		topK = params.TopK
	}
	if rerankTopK <= 0 {
		rerankTopK = params.RerankTopK
	}
	if rerankTopK > topK {
		rerankTopK = topK
	}

	return Query{
		Text:       trimmed,
		Mode:       mode,
		TopK:       topK,
		RerankTopK: rerankTopK,
	}, nil
}
