package usecase

import (
	"strings"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const contextSeparator = "\n\n"

// AssembleContext concatenates the top maxDocs ranked documents in rank
// order. No dedup: a repeated id yields repeated text. Empty input yields an
// empty string, which the generator treats as "cannot answer".
func AssembleContext(ranked []domain.RankedResult, maxDocs int) string {
	if maxDocs <= 0 || len(ranked) == 0 {
		return ""
	}
	if maxDocs > len(ranked) {
		maxDocs = len(ranked)
	}
	parts := make([]string, 0, maxDocs)
	for _, r := range ranked[:maxDocs] {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, contextSeparator)
}
