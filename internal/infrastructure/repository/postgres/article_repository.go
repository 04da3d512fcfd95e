package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hoanglb/legal-qa-assistant/internal/core/domain"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ArticleRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	source TEXT,
	category TEXT,
	storage_path TEXT NOT NULL,
	qa_pairs JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	crawled_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
CREATE INDEX IF NOT EXISTS idx_articles_crawled_at ON articles(crawled_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	qaJSON, err := json.Marshal(article.QAPairs)
	if err != nil {
		return fmt.Errorf("marshal qa pairs: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO articles (
	id, url, title, source, category, storage_path, qa_pairs, status, error_message, crawled_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		article.ID, article.URL, article.Title, article.Source, article.Category, article.StoragePath,
		qaJSON, string(article.Status), article.Error, article.CrawledAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, url, title, source, category, storage_path, qa_pairs, status, error_message, crawled_at, updated_at
FROM articles
WHERE id = $1
`, id)

	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArticleNotFound, "get article", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepository) UpdateStatus(ctx context.Context, id string, status domain.ArticleStatus, errorMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE articles SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1
`, id, string(status), errorMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update article status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article status rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrArticleNotFound, "update article status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *ArticleRepository) ListAll(ctx context.Context) ([]domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, url, title, source, category, storage_path, qa_pairs, status, error_message, crawled_at, updated_at
FROM articles
ORDER BY crawled_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var article domain.Article
	var qaRaw []byte
	var status string

	err := row.Scan(
		&article.ID, &article.URL, &article.Title, &article.Source, &article.Category,
		&article.StoragePath, &qaRaw, &status, &article.Error, &article.CrawledAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(qaRaw) > 0 {
		if err := json.Unmarshal(qaRaw, &article.QAPairs); err != nil {
			return nil, fmt.Errorf("unmarshal qa pairs: %w", err)
		}
	}
	article.Status = domain.ArticleStatus(status)
	return &article, nil
}
