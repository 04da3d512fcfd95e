package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

type stubResultCache struct {
	store   map[string][]domain.RankedResult
	getErr  error
	putErr  error
	cleared bool

	getCalls int
	putCalls int
}

func newStubResultCache() *stubResultCache {
	return &stubResultCache{store: make(map[string][]domain.RankedResult)}
}

func (c *stubResultCache) Get(_ context.Context, key string) ([]domain.RankedResult, bool, error) {
	c.getCalls++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	results, ok := c.store[key]
	return results, ok, nil
}

func (c *stubResultCache) Put(_ context.Context, key string, results []domain.RankedResult) error {
	c.putCalls++
	if c.putErr != nil {
		return c.putErr
	}
	c.store[key] = results
	return nil
}

func (c *stubResultCache) Clear(context.Context) error {
	c.cleared = true
	c.store = make(map[string][]domain.RankedResult)
	return nil
}

type stubGenerator struct {
	text       string
	err        error
	calls      int
	gotContext string
}

func (g *stubGenerator) GenerateAnswer(_ context.Context, _ string, contextBlock string) (string, error) {
	g.calls++
	g.gotContext = contextBlock
	return g.text, g.err
}

type recordingObserver struct {
	lookups   []bool
	stages    []string
	fallbacks int
}

func (o *recordingObserver) CacheLookup(_ string, hit bool) { o.lookups = append(o.lookups, hit) }

func (o *recordingObserver) StageDuration(stage, _ string, _ time.Duration) {
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) RerankFallback(string) { o.fallbacks++ }

type askFixture struct {
	dense    *stubDenseEncoder
	sparse   *stubSparseEncoder
	searcher *stubSearcher
	scorer   *stubCrossEncoder
	gen      *stubGenerator
	cache    *stubResultCache
	uc       *AskUseCase
}

func newAskFixture() *askFixture {
	f := &askFixture{
		dense:  &stubDenseEncoder{vector: []float32{0.1, 0.2}},
		sparse: &stubSparseEncoder{vector: domain.SparseVector{Indices: []uint32{1}, Values: []float32{1.0}}},
		searcher: &stubSearcher{
			denseHits:  []domain.IndexHit{{ID: "a", Text: "Điều 47 Luật Doanh nghiệp"}, {ID: "b", Text: "Điều 113"}},
			sparseHits: []domain.IndexHit{{ID: "b", Text: "Điều 113"}},
		},
		scorer: &stubCrossEncoder{scores: []float64{0.4, 0.9}},
		gen:    &stubGenerator{text: "Thời hạn góp vốn là 90 ngày."},
		cache:  newStubResultCache(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.uc = NewAskUseCase(
		NewQueryEncoder(f.dense, f.sparse),
		NewHybridRetriever(f.searcher, 60),
		NewReranker(f.scorer),
		f.gen,
		f.cache,
		"1",
		logger,
	)
	return f
}

func TestAskRunsFullPipelineOnCacheMiss(t *testing.T) {
	f := newAskFixture()
	obs := &recordingObserver{}
	f.uc.WithObserver(obs)

	answer, err := f.uc.Ask(context.Background(), "Thời hạn góp vốn?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "Thời hạn góp vốn là 90 ngày." {
		t.Fatalf("answer text = %q", answer.Text)
	}
	if answer.CacheHit {
		t.Fatalf("first call must be a cache miss")
	}
	if answer.Mode != domain.ModeBalanced {
		t.Fatalf("mode = %s", answer.Mode)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	// Fusion ranks b first (it appears in both lists) but the cross-encoder
	// scores the second document higher, so a is promoted.
	if answer.Sources[0].ID != "a" {
		t.Fatalf("top source = %s, want a", answer.Sources[0].ID)
	}
	if len(obs.lookups) != 1 || obs.lookups[0] {
		t.Fatalf("lookup observations = %v", obs.lookups)
	}
	wantStages := []string{"encode", "retrieve", "rerank", "generate"}
	if len(obs.stages) != len(wantStages) {
		t.Fatalf("stages = %v", obs.stages)
	}
	for i, want := range wantStages {
		if obs.stages[i] != want {
			t.Fatalf("stage %d = %s, want %s", i, obs.stages[i], want)
		}
	}
}

func TestAskSecondCallServedFromCache(t *testing.T) {
	f := newAskFixture()

	if _, err := f.uc.Ask(context.Background(), "Thời hạn góp vốn?", domain.ModeBalanced, 0, 0); err != nil {
		t.Fatalf("first ask: %v", err)
	}
	denseCalls, searchCalls, scoreCalls := f.dense.calls, f.searcher.denseCalls, f.scorer.calls

	answer, err := f.uc.Ask(context.Background(), "Thời hạn góp vốn?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("second ask: %v", err)
	}
	if !answer.CacheHit {
		t.Fatalf("second call must hit the cache")
	}
	if f.dense.calls != denseCalls || f.searcher.denseCalls != searchCalls || f.scorer.calls != scoreCalls {
		t.Fatalf("pipeline collaborators called on cache hit: encode %d->%d search %d->%d score %d->%d",
			denseCalls, f.dense.calls, searchCalls, f.searcher.denseCalls, scoreCalls, f.scorer.calls)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("cached sources = %d", len(answer.Sources))
	}
	// Generation is never cached.
	if f.gen.calls != 2 {
		t.Fatalf("generator calls = %d, want 2", f.gen.calls)
	}
}

func TestAskCacheReadFailureDegradesToMiss(t *testing.T) {
	f := newAskFixture()
	f.cache.getErr = errors.New("disk gone")

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.CacheHit {
		t.Fatalf("read failure must count as a miss")
	}
	if f.searcher.denseCalls != 1 {
		t.Fatalf("pipeline did not run after cache read failure")
	}
}

func TestAskCacheWriteFailureStillAnswers(t *testing.T) {
	f := newAskFixture()
	f.cache.putErr = errors.New("disk full")

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text == "" || answer.Text == apologyAnswer {
		t.Fatalf("answer degraded on cache write failure: %q", answer.Text)
	}
	if f.cache.putCalls != 1 {
		t.Fatalf("put calls = %d", f.cache.putCalls)
	}
}

func TestAskFastModeSkipsRerank(t *testing.T) {
	f := newAskFixture()

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeFast, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.scorer.calls != 0 {
		t.Fatalf("cross-encoder called in fast mode")
	}
	for i, src := range answer.Sources {
		if src.OriginalScore == nil || src.RerankScore != *src.OriginalScore {
			t.Fatalf("source %d: fast mode must keep fused scores", i)
		}
	}
}

func TestAskRerankFailureFallsBackToFusedOrder(t *testing.T) {
	f := newAskFixture()
	f.scorer.err = errors.New("reranker down")
	obs := &recordingObserver{}
	f.uc.WithObserver(obs)

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("degraded rerank must not fail the request: %v", err)
	}
	if obs.fallbacks != 1 {
		t.Fatalf("fallback observations = %d, want 1", obs.fallbacks)
	}
	// Fused order puts b first: it appears in both modality lists.
	if answer.Sources[0].ID != "b" {
		t.Fatalf("fallback order starts with %s", answer.Sources[0].ID)
	}
	for i, src := range answer.Sources {
		if src.OriginalScore == nil || src.RerankScore != *src.OriginalScore {
			t.Fatalf("source %d: fallback must keep fused scores", i)
		}
	}
}

func TestAskEncodingFailurePropagates(t *testing.T) {
	f := newAskFixture()
	f.dense.err = errors.New("ollama down")

	_, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if !domain.IsKind(err, domain.ErrEncodingUnavailable) {
		t.Fatalf("expected encoding unavailable, got %v", err)
	}
	if f.cache.putCalls != 0 {
		t.Fatalf("failed pipeline must not write the cache")
	}
}

func TestAskRetrievalFailurePropagates(t *testing.T) {
	f := newAskFixture()
	f.searcher.denseErr = errors.New("qdrant down")

	_, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if !domain.IsKind(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("expected retrieval unavailable, got %v", err)
	}
	if f.gen.calls != 0 {
		t.Fatalf("generator called after retrieval failure")
	}
}

func TestAskEmptyRetrievalYieldsApology(t *testing.T) {
	f := newAskFixture()
	f.searcher.denseHits = nil
	f.searcher.sparseHits = nil

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != apologyAnswer {
		t.Fatalf("answer = %q, want apology", answer.Text)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("sources = %d, want 0", len(answer.Sources))
	}
	if f.gen.calls != 0 {
		t.Fatalf("generator called with empty context")
	}
}

func TestAskGenerationFailureYieldsApologyWithSources(t *testing.T) {
	f := newAskFixture()
	f.gen.err = errors.New("model crashed")
	f.gen.text = ""

	answer, err := f.uc.Ask(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("generation failure must not fail the request: %v", err)
	}
	if answer.Text != apologyAnswer {
		t.Fatalf("answer = %q, want apology", answer.Text)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("sources must survive generation failure, got %d", len(answer.Sources))
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	f := newAskFixture()

	_, err := f.uc.Ask(context.Background(), "   ", domain.ModeBalanced, 0, 0)
	if !domain.IsKind(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected invalid query, got %v", err)
	}
}

func TestRetrieveSkipsGeneration(t *testing.T) {
	f := newAskFixture()

	results, err := f.uc.Retrieve(context.Background(), "Câu hỏi?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if f.gen.calls != 0 {
		t.Fatalf("generator called during search-only retrieval")
	}
}

func TestClearCacheDelegates(t *testing.T) {
	f := newAskFixture()
	if err := f.uc.ClearCache(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.cache.cleared {
		t.Fatalf("cache not cleared")
	}
}

func TestFingerprintDeterministicAndSensitive(t *testing.T) {
	base, err := domain.NewQuery("Thời hạn góp vốn?", domain.ModeBalanced, 0, 0)
	if err != nil {
		t.Fatalf("new query: %v", err)
	}

	if Fingerprint(base, "1") != Fingerprint(base, "1") {
		t.Fatalf("fingerprint not deterministic")
	}
	if len(Fingerprint(base, "1")) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(Fingerprint(base, "1")))
	}

	variants := []domain.Query{}
	otherText, _ := domain.NewQuery("Câu hỏi khác?", domain.ModeBalanced, 0, 0)
	otherMode, _ := domain.NewQuery("Thời hạn góp vốn?", domain.ModeAccurate, 0, 0)
	otherTopK, _ := domain.NewQuery("Thời hạn góp vốn?", domain.ModeBalanced, 7, 0)
	otherRerank, _ := domain.NewQuery("Thời hạn góp vốn?", domain.ModeBalanced, 0, 4)
	variants = append(variants, otherText, otherMode, otherTopK, otherRerank)

	seen := map[string]bool{Fingerprint(base, "1"): true}
	for i, q := range variants {
		fp := Fingerprint(q, "1")
		if seen[fp] {
			t.Fatalf("variant %d collides with an earlier fingerprint", i)
		}
		seen[fp] = true
	}
	if seen[Fingerprint(base, "2")] {
		t.Fatalf("corpus version not part of the fingerprint")
	}
}
