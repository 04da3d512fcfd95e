// Package httpadapter exposes the QA pipeline and corpus management over a
// plain net/http mux.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
	"github.com/hoanglb/legal-qa-assistant/internal/observability/metrics"
)

type Router struct {
	answerer ports.QuestionAnswerer
	ingestor ports.ArticleIngestor
	articles ports.ArticleReader
	importer ports.DocumentImporter
	logger   *slog.Logger
	metrics  *metrics.HTTPServerMetrics
	service  string
}

func NewRouter(
	answerer ports.QuestionAnswerer,
	ingestor ports.ArticleIngestor,
	articles ports.ArticleReader,
	importer ports.DocumentImporter,
	logger *slog.Logger,
	m *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		answerer: answerer,
		ingestor: ingestor,
		articles: articles,
		importer: importer,
		logger:   logger,
		metrics:  m,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/qa/ask", rt.ask)
	mux.HandleFunc("/v1/qa/search", rt.search)
	mux.HandleFunc("/v1/cache", rt.clearCache)
	mux.HandleFunc("/v1/articles", rt.createArticle)
	mux.HandleFunc("/v1/articles/", rt.getArticleByID)
	mux.HandleFunc("/v1/documents", rt.importDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question   string `json:"question"`
	Mode       string `json:"mode"`
	TopK       int    `json:"top_k"`
	RerankTopK int    `json:"rerank_top_k"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := rt.decodeAskRequest(w, r)
	if !ok {
		return
	}
	mode, ok := domain.ParseRetrievalMode(req.Mode)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode: " + req.Mode})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Ask(r.Context(), req.Question, mode, req.TopK, req.RerankTopK)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAsk(rt.service, string(answer.Mode), len(answer.Sources), time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := rt.decodeAskRequest(w, r)
	if !ok {
		return
	}
	mode, ok := domain.ParseRetrievalMode(req.Mode)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown mode: " + req.Mode})
		return
	}

	results, err := rt.answerer.Retrieve(r.Context(), req.Question, mode, req.TopK, req.RerankTopK)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":    string(mode),
		"results": results,
	})
}

func (rt *Router) decodeAskRequest(w http.ResponseWriter, r *http.Request) (askRequest, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return askRequest{}, false
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return askRequest{}, false
	}
	return req, true
}

func (rt *Router) clearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.answerer.ClearCache(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (rt *Router) createArticle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var article domain.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.ingestor.Ingest(r.Context(), &article)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, created)
}

func (rt *Router) getArticleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/articles/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "article id is required"})
		return
	}

	article, err := rt.articles.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (rt *Router) importDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.importer.Import(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
