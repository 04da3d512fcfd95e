package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "bm25"
)

// Config pins the collection identity: the collection only makes sense
// together with the models its vectors were produced by, so the tuple is
// explicit and validated at startup instead of being encoded in the
// collection name.
type Config struct {
	BaseURL         string
	Collection      string
	DenseModel      string
	SparseModel     string
	DenseVectorSize int
}

type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// EnsureCollection creates the collection with both named vector spaces on
// first use, or verifies an existing collection against the configured
// identity. A dense size mismatch means the collection was built with a
// different embedding model; that fails fast rather than silently searching
// incompatible vectors.
func (c *Client) EnsureCollection(ctx context.Context) error {
	info, exists, err := c.collectionInfo(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return c.createCollection(ctx)
	}

	denseSize := info.denseSize(denseVectorName)
	if denseSize != c.cfg.DenseVectorSize {
		return fmt.Errorf(
			"collection %q has dense size %d, want %d (dense model %s): refusing to mix embedding models",
			c.cfg.Collection, denseSize, c.cfg.DenseVectorSize, c.cfg.DenseModel,
		)
	}
	if !info.hasSparse(sparseVectorName) {
		return fmt.Errorf(
			"collection %q has no %q sparse vectors (sparse model %s)",
			c.cfg.Collection, sparseVectorName, c.cfg.SparseModel,
		)
	}
	return nil
}

func (c *Client) UpsertPoints(ctx context.Context, points []domain.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	type pointBody struct {
		ID      string         `json:"id"`
		Vector  map[string]any `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	body := make([]pointBody, 0, len(points))
	for _, p := range points {
		payload := map[string]any{
			"raw_context": p.RawContext,
			"create_at":   p.CreateAt,
			"article_id":  p.ArticleID,
		}
		if p.Question != "" {
			payload["question"] = p.Question
		}
		body = append(body, pointBody{
			ID: p.ID,
			Vector: map[string]any{
				denseVectorName:  p.Dense,
				sparseVectorName: p.Sparse,
			},
			Payload: payload,
		})
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.cfg.Collection)
	return c.do(ctx, http.MethodPut, url, map[string]any{"points": body}, nil, "upsert")
}

// SearchDense returns the index's ranked hits for the dense query vector.
func (c *Client) SearchDense(ctx context.Context, vector []float32, limit int) ([]domain.IndexHit, error) {
	return c.query(ctx, vector, denseVectorName, limit)
}

// SearchSparse returns the index's ranked hits for the sparse query vector.
func (c *Client) SearchSparse(ctx context.Context, vector domain.SparseVector, limit int) ([]domain.IndexHit, error) {
	return c.query(ctx, vector, sparseVectorName, limit)
}

func (c *Client) query(ctx context.Context, queryVector any, using string, limit int) ([]domain.IndexHit, error) {
	reqBody := map[string]any{
		"query":        queryVector,
		"using":        using,
		"limit":        limit,
		"with_payload": true,
	}

	var resp struct {
		Result struct {
			Points []struct {
				ID      json.RawMessage `json:"id"`
				Score   float64         `json:"score"`
				Payload map[string]any  `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/query", c.baseURL, c.cfg.Collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &resp, "query "+using); err != nil {
		return nil, err
	}

	out := make([]domain.IndexHit, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		out = append(out, domain.IndexHit{
			ID:       normalizePointID(p.ID),
			Text:     getStringPayload(p.Payload, "raw_context"),
			Score:    p.Score,
			CreateAt: getStringPayload(p.Payload, "create_at"),
		})
	}
	return out, nil
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors       map[string]json.RawMessage `json:"vectors"`
				SparseVectors map[string]json.RawMessage `json:"sparse_vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

func (info *collectionInfo) denseSize(name string) int {
	raw, ok := info.Result.Config.Params.Vectors[name]
	if !ok {
		return 0
	}
	var params struct {
		Size int `json:"size"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return 0
	}
	return params.Size
}

func (info *collectionInfo) hasSparse(name string) bool {
	_, ok := info.Result.Config.Params.SparseVectors[name]
	return ok
}

func (c *Client) collectionInfo(ctx context.Context) (*collectionInfo, bool, error) {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.cfg.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create collection info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("qdrant collection info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode >= 300 {
		return nil, false, statusError("collection info", resp)
	}

	var info collectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, false, fmt.Errorf("decode collection info: %w", err)
	}
	return &info, true, nil
}

func (c *Client) createCollection(ctx context.Context) error {
	reqBody := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     c.cfg.DenseVectorSize,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	}
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.cfg.Collection)
	return c.do(ctx, http.MethodPut, url, reqBody, nil, "create collection")
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("qdrant %s status: %s: %s", operation, resp.Status, msg)
	}
	return fmt.Errorf("qdrant %s status: %s", operation, resp.Status)
}

// normalizePointID keeps ids opaque: Qdrant may return them as strings or
// numbers depending on how points were written.
func normalizePointID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
