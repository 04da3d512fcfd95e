package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

// apologyAnswer is returned whenever generation cannot produce text: the
// user-facing contract is "always return some text".
const apologyAnswer = "Xin lỗi, tôi không thể tạo câu trả lời vào lúc này."

// PipelineObserver receives pipeline events for metrics. Implementations
// must be cheap and must not fail.
type PipelineObserver interface {
	CacheLookup(mode string, hit bool)
	StageDuration(stage, mode string, d time.Duration)
	RerankFallback(mode string)
}

type nopObserver struct{}

func (nopObserver) CacheLookup(string, bool) {}

func (nopObserver) StageDuration(string, string, time.Duration) {}

func (nopObserver) RerankFallback(string) {}

// AskUseCase wires the pipeline per request: cache lookup, fork-join
// encoding, hybrid retrieval, mode-dependent rerank, context assembly,
// generation, write-through caching. It holds only configuration and
// collaborator handles; all request state is local to the call.
type AskUseCase struct {
	encoder   *QueryEncoder
	retriever *HybridRetriever
	reranker  *Reranker
	generator ports.AnswerGenerator
	cache     ports.ResultCache

	corpusVersion string
	logger        *slog.Logger
	observer      PipelineObserver
}

func NewAskUseCase(
	encoder *QueryEncoder,
	retriever *HybridRetriever,
	reranker *Reranker,
	generator ports.AnswerGenerator,
	cache ports.ResultCache,
	corpusVersion string,
	logger *slog.Logger,
) *AskUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AskUseCase{
		encoder:       encoder,
		retriever:     retriever,
		reranker:      reranker,
		generator:     generator,
		cache:         cache,
		corpusVersion: corpusVersion,
		logger:        logger,
		observer:      nopObserver{},
	}
}

func (uc *AskUseCase) WithObserver(observer PipelineObserver) *AskUseCase {
	if observer != nil {
		uc.observer = observer
	}
	return uc
}

func (uc *AskUseCase) Ask(ctx context.Context, question string, mode domain.RetrievalMode, topK, rerankTopK int) (*domain.Answer, error) {
	query, err := domain.NewQuery(question, mode, topK, rerankTopK)
	if err != nil {
		return nil, err
	}

	ranked, cacheHit, err := uc.retrieveRanked(ctx, query)
	if err != nil {
		return nil, err
	}

	text := uc.generate(ctx, query, ranked)
	return &domain.Answer{
		Text:     text,
		Sources:  ranked,
		Mode:     query.Mode,
		CacheHit: cacheHit,
	}, nil
}

// Retrieve exposes the cached retrieve-and-rerank stage without generation.
func (uc *AskUseCase) Retrieve(ctx context.Context, question string, mode domain.RetrievalMode, topK, rerankTopK int) ([]domain.RankedResult, error) {
	query, err := domain.NewQuery(question, mode, topK, rerankTopK)
	if err != nil {
		return nil, err
	}
	ranked, _, err := uc.retrieveRanked(ctx, query)
	return ranked, err
}

func (uc *AskUseCase) ClearCache(ctx context.Context) error {
	return uc.cache.Clear(ctx)
}

// retrieveRanked runs the cache branch and, on miss, the full retrieval
// pipeline. Failures abort before the write-through, so partial results are
// never cached; an empty ranked list is a valid, cacheable result.
func (uc *AskUseCase) retrieveRanked(ctx context.Context, query domain.Query) ([]domain.RankedResult, bool, error) {
	key := Fingerprint(query, uc.corpusVersion)
	modeLabel := string(query.Mode)

	cached, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
	}
	if found {
		uc.observer.CacheLookup(modeLabel, true)
		return cached, true, nil
	}
	uc.observer.CacheLookup(modeLabel, false)

	start := time.Now()
	embeddings, err := uc.encoder.Encode(ctx, query.Text)
	if err != nil {
		return nil, false, err
	}
	uc.observer.StageDuration("encode", modeLabel, time.Since(start))

	start = time.Now()
	candidates, err := uc.retriever.Retrieve(ctx, embeddings, query.TopK)
	if err != nil {
		return nil, false, err
	}
	uc.observer.StageDuration("retrieve", modeLabel, time.Since(start))

	start = time.Now()
	ranked, err := uc.rank(ctx, query, candidates)
	if err != nil {
		return nil, false, err
	}
	uc.observer.StageDuration("rerank", modeLabel, time.Since(start))

	if err := uc.cache.Put(ctx, key, ranked); err != nil {
		uc.logger.Warn("cache write failed, skipping persistence", "key", key, "error", err)
	}
	return ranked, false, nil
}

func (uc *AskUseCase) rank(ctx context.Context, query domain.Query, candidates []domain.Candidate) ([]domain.RankedResult, error) {
	if !query.Mode.Params().RerankEnabled {
		return FusedOrder(candidates), nil
	}

	ranked, err := uc.reranker.Rerank(ctx, query.Text, candidates, query.RerankTopK)
	if err == nil {
		return ranked, nil
	}
	if domain.IsKind(err, domain.ErrRerankUnavailable) {
		uc.logger.Warn("cross-encoder unavailable, falling back to fused order", "error", err)
		uc.observer.RerankFallback(string(query.Mode))
		return FusedOrder(candidates), nil
	}
	return nil, err
}

func (uc *AskUseCase) generate(ctx context.Context, query domain.Query, ranked []domain.RankedResult) string {
	maxDocs := query.Mode.Params().MaxContextDocs
	contextBlock := AssembleContext(ranked, maxDocs)
	if contextBlock == "" {
		uc.logger.Info("no context retrieved, returning apology", "mode", query.Mode)
		return apologyAnswer
	}

	start := time.Now()
	text, err := uc.generator.GenerateAnswer(ctx, query.Text, contextBlock)
	uc.observer.StageDuration("generate", string(query.Mode), time.Since(start))
	if err != nil || text == "" {
		uc.logger.Error("answer generation failed", "error", err)
		return apologyAnswer
	}
	return text
}

// Fingerprint is the content-addressed cache key: a pure function of the
// query text, the resolved search parameters and the corpus version.
func Fingerprint(query domain.Query, corpusVersion string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"v1|corpus=%s|mode=%s|top_k=%d|rerank_top_k=%d|%s",
		corpusVersion, query.Mode, query.TopK, query.RerankTopK, query.Text,
	)))
	return hex.EncodeToString(sum[:])
}
