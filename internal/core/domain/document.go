package domain

import "time"

// ImportedDocument describes one legal source document imported directly
// into the vector index (dataset files, PDFs), outside the crawl flow.
type ImportedDocument struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	StoragePath string    `json:"storage_path"`
	Chunks      int       `json:"chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// IndexHit is one raw hit from a single-modality index search, before fusion.
type IndexHit struct {
	ID       string
	Text     string
	Score    float64
	CreateAt string
}

// IndexPoint is one unit written to the vector index: both vector modalities
// plus the payload the retrieval pipeline reads back.
type IndexPoint struct {
	ID         string
	Dense      []float32
	Sparse     SparseVector
	RawContext string
	CreateAt   string
	ArticleID  string
	Question   string
}
