package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

type answererFake struct {
	answer  *domain.Answer
	results []domain.RankedResult
	err     error

	gotQuestion string
	gotMode     domain.RetrievalMode
	gotTopK     int
	cleared     bool
}

func (f *answererFake) Ask(_ context.Context, question string, mode domain.RetrievalMode, topK, _ int) (*domain.Answer, error) {
	f.gotQuestion = question
	f.gotMode = mode
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *answererFake) Retrieve(_ context.Context, question string, mode domain.RetrievalMode, _, _ int) ([]domain.RankedResult, error) {
	f.gotQuestion = question
	f.gotMode = mode
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *answererFake) ClearCache(context.Context) error {
	f.cleared = true
	return f.err
}

type ingestorFake struct {
	err error
}

func (f ingestorFake) Ingest(_ context.Context, article *domain.Article) (*domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	article.ID = "art-1"
	return article, nil
}

type articlesFake struct {
	err error
}

func (f articlesFake) GetByID(context.Context, string) (*domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Article{ID: "art-1", Title: "Thử việc", Status: domain.StatusIndexed}, nil
}

type importerFake struct {
	err error
}

func (f importerFake) Import(context.Context, string, string, io.Reader) (*domain.ImportedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ImportedDocument{ID: "doc-1", Chunks: 3}, nil
}

func newTestRouter(answerer *answererFake, ingestor ingestorFake, articles articlesFake, importer importerFake) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(answerer, ingestor, articles, importer, logger, nil, "api-test").Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	fake := &answererFake{answer: &domain.Answer{
		Text:    "Theo Điều 25...",
		Mode:    domain.ModeBalanced,
		Sources: []domain.RankedResult{{Rank: 1, ID: "p1", Text: "Điều 25", RerankScore: 0.9}},
	}}
	handler := newTestRouter(fake, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/ask", map[string]any{"question": "Thử việc bao lâu?", "mode": "balanced"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if fake.gotQuestion != "Thử việc bao lâu?" || fake.gotMode != domain.ModeBalanced {
		t.Fatalf("forwarded question=%q mode=%q", fake.gotQuestion, fake.gotMode)
	}

	var answer domain.Answer
	if err := json.Unmarshal(res.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text == "" || len(answer.Sources) != 1 {
		t.Fatalf("answer = %+v", answer)
	}
}

func TestAskDefaultsModeToBalanced(t *testing.T) {
	fake := &answererFake{answer: &domain.Answer{Mode: domain.ModeBalanced}}
	handler := newTestRouter(fake, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/ask", map[string]any{"question": "câu hỏi"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if fake.gotMode != domain.ModeBalanced {
		t.Fatalf("mode = %q, want balanced", fake.gotMode)
	}
}

func TestAskRejectsUnknownMode(t *testing.T) {
	handler := newTestRouter(&answererFake{}, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/ask", map[string]any{"question": "câu hỏi", "mode": "turbo"})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	handler := newTestRouter(&answererFake{}, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/ask", map[string]any{"question": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskMapsRetrievalUnavailableTo503(t *testing.T) {
	fake := &answererFake{err: domain.WrapError(domain.ErrRetrievalUnavailable, "dense search", errors.New("connection refused"))}
	handler := newTestRouter(fake, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/ask", map[string]any{"question": "câu hỏi"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	fake := &answererFake{results: []domain.RankedResult{
		{Rank: 1, ID: "a", RerankScore: 0.8},
		{Rank: 2, ID: "b", RerankScore: 0.2},
	}}
	handler := newTestRouter(fake, ingestorFake{}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/qa/search", map[string]any{"question": "câu hỏi", "mode": "fast"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var payload struct {
		Mode    string                `json:"mode"`
		Results []domain.RankedResult `json:"results"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Mode != "fast" || len(payload.Results) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestClearCacheRequiresDelete(t *testing.T) {
	fake := &answererFake{}
	handler := newTestRouter(fake, ingestorFake{}, articlesFake{}, importerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/cache", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/cache", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !fake.cleared {
		t.Fatalf("ClearCache was not called")
	}
}

func TestGetArticleByIDMapsNotFoundTo404(t *testing.T) {
	handler := newTestRouter(&answererFake{}, ingestorFake{}, articlesFake{
		err: domain.WrapError(domain.ErrArticleNotFound, "get article", errors.New("id missing")),
	}, importerFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/articles/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCreateArticleMapsInvalidInputTo400(t *testing.T) {
	handler := newTestRouter(&answererFake{}, ingestorFake{
		err: domain.WrapError(domain.ErrInvalidInput, "ingest", errors.New("no qa pairs")),
	}, articlesFake{}, importerFake{})

	res := postJSON(t, handler, "/v1/articles", map[string]any{"url": "https://example.vn/a"})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	handler := newTestRouter(&answererFake{}, ingestorFake{}, articlesFake{}, importerFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get("X-Request-Id") != "fixed-id" {
		t.Fatalf("request id not propagated: %q", res.Header().Get("X-Request-Id"))
	}
}
