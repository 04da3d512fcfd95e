// Package thuvienphapluat crawls legal QA articles from thuvienphapluat.vn
// style pages: an h1 title and a news-content container where each h2 is a
// question followed by answer paragraphs, quoted statutes and tables.
package thuvienphapluat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

const (
	defaultSource     = "thuvienphapluat.vn"
	contentID         = "news-content"
	minQuestionLength = 10
	minAnswerLength   = 20
)

type Crawler struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// New builds a crawler limited to requestsPerSecond against the source site.
func New(requestsPerSecond float64) *Crawler {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Crawler{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent:  "legal-qa-crawler/1.0",
	}
}

func (c *Crawler) Crawl(ctx context.Context, url string) (*domain.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create crawl request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch article page: status %s", resp.Status)
	}

	article, err := c.Parse(resp.Body, url)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Parse extracts the article from already fetched HTML. Split out from
// Crawl so fixtures can exercise it without a server.
func (c *Crawler) Parse(body io.Reader, url string) (*domain.Article, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	title := cleanText(textOf(findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1"
	})))

	content := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attrValue(n, "id") == contentID
	})
	if content == nil {
		return nil, fmt.Errorf("no %s container in page %s", contentID, url)
	}

	pairs := extractQAPairs(content)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no question headings in page %s", url)
	}

	return &domain.Article{
		URL:     url,
		Title:   title,
		Source:  defaultSource,
		QAPairs: pairs,
	}, nil
}

// extractQAPairs walks the direct children of the content container. Each
// h2 opens a question; paragraphs long enough to be answers open answer
// blocks, and blockquotes/tables attach as context until the next heading.
func extractQAPairs(content *html.Node) []domain.QAPair {
	var pairs []domain.QAPair
	var current *domain.QAPair
	hasAnswer := false

	flush := func() {
		if current != nil && len(current.Answers) > 0 {
			pairs = append(pairs, *current)
		}
		current = nil
		hasAnswer = false
	}

	for child := content.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		switch child.Data {
		case "h2":
			flush()
			question := cleanText(textOf(child))
			if len([]rune(question)) >= minQuestionLength {
				current = &domain.QAPair{Question: question}
			}
		case "p":
			if current == nil {
				continue
			}
			text := cleanText(textOf(child))
			if len([]rune(text)) >= minAnswerLength {
				current.Answers = append(current.Answers, domain.AnswerBlock{Kind: "answer", Text: text})
				hasAnswer = true
			}
		case "blockquote":
			if current == nil || !hasAnswer {
				continue
			}
			if text := cleanText(textOf(child)); text != "" {
				current.Answers = append(current.Answers, domain.AnswerBlock{Kind: "context", Text: text})
			}
		case "table":
			if current == nil || !hasAnswer {
				continue
			}
			if md := tableToMarkdown(child); md != "" {
				current.Answers = append(current.Answers, domain.AnswerBlock{Kind: "context", Text: md})
			}
		}
	}
	flush()
	return pairs
}

// tableToMarkdown renders the first row as a header and the rest as data
// rows, matching how statute tables are quoted in the source pages.
func tableToMarkdown(table *html.Node) string {
	var rows [][]string
	walk(table, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			walk(n, func(cell *html.Node) {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					cells = append(cells, cleanText(textOf(cell)))
				}
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
	})
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(rows[0], " | ") + " |")
	b.WriteString("\n|" + strings.Repeat("---|", len(rows[0])))
	for _, row := range rows[1:] {
		b.WriteString("\n| " + strings.Join(row, " | ") + " |")
	}
	return b.String()
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child)
		walk(child, visit)
	}
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
