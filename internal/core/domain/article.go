package domain

import "time"

type ArticleStatus string

const (
	StatusCrawled    ArticleStatus = "crawled"
	StatusProcessing ArticleStatus = "processing"
	StatusIndexed    ArticleStatus = "indexed"
	StatusFailed     ArticleStatus = "failed"
)

// AnswerBlock is one answer fragment under a crawled question heading.
type AnswerBlock struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// QAPair is one question heading with its answer blocks.
type QAPair struct {
	Question string        `json:"question"`
	Answers  []AnswerBlock `json:"answers"`
}

// Article is one crawled legal QA article from the source site.
type Article struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Source      string        `json:"source"`
	Category    string        `json:"category,omitempty"`
	StoragePath string        `json:"storage_path"`
	QAPairs     []QAPair      `json:"qa_pairs"`
	Status      ArticleStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	CrawledAt   time.Time     `json:"crawled_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ContextText flattens one QA pair into the raw_context payload stored in
// the vector index: question first, then each answer block.
func (p QAPair) ContextText() string {
	out := p.Question
	for _, a := range p.Answers {
		if a.Text == "" {
			continue
		}
		out += "\n" + a.Text
	}
	return out
}
