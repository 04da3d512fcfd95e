// Package bm25 is the local lexical sparse-embedding provider: a
// term-frequency weighting over hashed tokens, compatible with a Qdrant
// sparse vector space. It is deterministic and has no remote dependency.
package bm25

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const (
	defaultK1      = 1.2
	maxSparseTerms = 256
)

type Encoder struct {
	k1 float64
}

func New() *Encoder {
	return &Encoder{k1: defaultK1}
}

func (e *Encoder) EncodeSparse(_ context.Context, text string) (domain.SparseVector, error) {
	termFreq := make(map[uint32]float64, 32)
	for _, token := range tokenize(text) {
		termFreq[hashToken(token)]++
	}
	return e.termFreqToSparse(termFreq), nil
}

func (e *Encoder) termFreqToSparse(tf map[uint32]float64) domain.SparseVector {
	if len(tf) == 0 {
		return domain.SparseVector{}
	}

	indices := make([]uint32, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	if len(indices) > maxSparseTerms {
		indices = indices[:maxSparseTerms]
	}

	values := make([]float32, 0, len(indices))
	for _, idx := range indices {
		tfValue := tf[idx]
		weight := (tfValue * (e.k1 + 1.0)) / (tfValue + e.k1)
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			weight = 0
		}
		values = append(values, float32(weight))
	}

	return domain.SparseVector{Indices: indices, Values: values}
}

func hashToken(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum32()
	if sum == 0 {
		return 1
	}
	return sum
}

// tokenize lowercases and splits on non-alphanumeric runes. Vietnamese text
// keeps its diacritics: any unicode letter or digit is part of a token.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
