package diskcache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

func TestPutThenGetRoundTrip(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	fused := 0.42
	stored := []domain.RankedResult{
		{Rank: 1, ID: "a", Text: "điều 25", RerankScore: 0.9, OriginalScore: &fused, CreateAt: "2025-01-02T00:00:00Z"},
		{Rank: 2, ID: "b", Text: "điều 26", RerankScore: 0.1, CreateAt: "N/A"},
	}
	if err := cache.Put(context.Background(), "key1", stored); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := cache.Get(context.Background(), "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("expected cache hit")
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Rank != 2 {
		t.Fatalf("unexpected results: %+v", got)
	}
	if got[0].OriginalScore == nil || *got[0].OriginalScore != fused {
		t.Fatalf("original score lost: %+v", got[0])
	}
	if got[1].OriginalScore != nil {
		t.Fatalf("expected nil original score for tail entry")
	}
}

func TestGetMissingKeyIsMiss(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, found, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("expected miss for absent key")
	}
}

func TestGetCorruptEntryReturnsCacheError(t *testing.T) {
	dir := t.TempDir()
	cache, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt entry: %v", err)
	}

	_, found, err := cache.Get(context.Background(), "bad")
	if found {
		t.Fatalf("corrupt entry must not count as hit")
	}
	if !domain.IsKind(err, domain.ErrCacheIO) {
		t.Fatalf("error = %v, want cache io kind", err)
	}
}

func TestClearRemovesAllEntries(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"k1", "k2", "k3"} {
		if err := cache.Put(context.Background(), key, []domain.RankedResult{{Rank: 1, ID: key}}); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}
	if err := cache.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range []string{"k1", "k2", "k3"} {
		if _, found, _ := cache.Get(context.Background(), key); found {
			t.Fatalf("entry %s survived Clear()", key)
		}
	}
}

func TestConcurrentPutSameKey(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Put(context.Background(), "shared", []domain.RankedResult{{Rank: 1, ID: "x", Text: "same payload"}})
		}()
	}
	wg.Wait()

	got, found, err := cache.Get(context.Background(), "shared")
	if err != nil || !found {
		t.Fatalf("Get() = found=%v err=%v", found, err)
	}
	if len(got) != 1 || got[0].Text != "same payload" {
		t.Fatalf("torn entry: %+v", got)
	}
}
