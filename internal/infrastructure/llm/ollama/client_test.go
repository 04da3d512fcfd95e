package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoanglb/legal-qa-assistant/internal/infrastructure/resilience"
)

func testPolicy() resilience.Policy {
	p := resilience.DefaultPolicy()
	p.RetryMaxAttempts = 1
	p.BreakerEnabled = false
	return p
}

func TestGeneratorBuildsLegalPrompt(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"Theo quy định hiện hành..."}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", testPolicy())
	gen := NewGenerator(client)
	answer, err := gen.GenerateAnswer(context.Background(), "Thời gian thử việc tối đa là bao lâu?", "Điều 25 Bộ luật Lao động quy định...")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "Theo quy định hiện hành..." {
		t.Fatalf("answer = %q", answer)
	}
	if !strings.Contains(capturedPrompt, "Thời gian thử việc tối đa là bao lâu?") {
		t.Fatalf("prompt missing question: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "Điều 25 Bộ luật Lao động") {
		t.Fatalf("prompt missing context: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "chuyên gia tư vấn pháp luật") {
		t.Fatalf("prompt missing persona: %s", capturedPrompt)
	}
}

func TestEncodeDenseReturnsFirstVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", testPolicy())
	embedder := NewEmbedder(client)
	vec, err := embedder.EncodeDense(context.Background(), "hợp đồng lao động")
	if err != nil {
		t.Fatalf("EncodeDense() error = %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEncodeDenseRejectsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", testPolicy())
	embedder := NewEmbedder(client)
	if _, err := embedder.EncodeDense(context.Background(), "text"); err == nil {
		t.Fatalf("expected error for empty embedding result")
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", testPolicy())
	embedder := NewEmbedder(client)
	_, err := embedder.EncodeDense(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestEmbedRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
	}))
	defer server.Close()

	p := resilience.DefaultPolicy()
	p.RetryInitialBackoff = 1
	p.BreakerEnabled = false
	client := New(server.URL, "gen", "embed", p)
	embedder := NewEmbedder(client)
	if _, err := embedder.EncodeDense(context.Background(), "hello"); err != nil {
		t.Fatalf("EncodeDense() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
