// Package diskcache stores reranked retrieval results on disk, one JSON
// file per fingerprint key.
package diskcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

type Cache struct {
	dir string
}

// New creates the cache directory if it does not exist yet.
func New(dir string) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrCacheIO, "create cache dir", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]domain.RankedResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, domain.WrapError(domain.ErrCacheIO, "read cache entry", err)
	}

	var results []domain.RankedResult
	if err := json.Unmarshal(raw, &results); err != nil {
		// A torn or corrupted entry reads as a miss.
		return nil, false, domain.WrapError(domain.ErrCacheIO, "decode cache entry", err)
	}
	return results, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, results []domain.RankedResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return domain.WrapError(domain.ErrCacheIO, "encode cache entry", err)
	}

	// Write to a temp file first so readers never observe a partial entry.
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return domain.WrapError(domain.ErrCacheIO, "create cache temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.WrapError(domain.ErrCacheIO, "write cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.WrapError(domain.ErrCacheIO, "close cache temp file", err)
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		os.Remove(tmpName)
		return domain.WrapError(domain.ErrCacheIO, "publish cache entry", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return domain.WrapError(domain.ErrCacheIO, "list cache entries", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return domain.WrapError(domain.ErrCacheIO, "remove cache entry", err)
		}
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
