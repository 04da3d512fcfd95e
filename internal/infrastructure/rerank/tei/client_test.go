package tei

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

func TestScoreMapsResultsBackToInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		var payload rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Query != "thử việc" {
			t.Fatalf("query = %q", payload.Query)
		}
		if len(payload.Documents) != 3 || payload.TopN != 3 {
			t.Fatalf("documents = %d top_n = %d", len(payload.Documents), payload.TopN)
		}
		// Results arrive sorted by relevance, not by input order.
		_, _ = w.Write([]byte(`{"results":[
			{"index":2,"relevance_score":0.9},
			{"index":0,"relevance_score":0.5},
			{"index":1,"relevance_score":0.1}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "rerank-model", testPolicy())
	scores, err := client.Score(context.Background(), "thử việc", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	want := []float64{0.5, 0.1, 0.9}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("scores = %v, want %v", scores, want)
		}
	}
}

func TestScoreEmptyDocuments(t *testing.T) {
	client := New("http://unused", "m", testPolicy())
	scores, err := client.Score(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("scores = %v, want empty", scores)
	}
}

func TestScoreRejectsIncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"index":0,"relevance_score":0.9}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "m", testPolicy())
	_, err := client.Score(context.Background(), "q", []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected error for missing score")
	}
	if !strings.Contains(err.Error(), "missing score") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScoreSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "m", testPolicy())
	_, err := client.Score(context.Background(), "q", []string{"a"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
