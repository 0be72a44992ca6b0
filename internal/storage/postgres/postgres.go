package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/ebookseek/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS search_results (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	snippet TEXT NOT NULL,
	display_link TEXT NOT NULL,
	formatted_url TEXT NOT NULL,
	source_site TEXT NOT NULL,
	search_keywords TEXT[] NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_results_run ON search_results (run_id);
`

// New creates a Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, result *storage.SearchResult) error {
	query := `
	INSERT INTO search_results (
		run_id, title, link, snippet, display_link, formatted_url, source_site, search_keywords, fetched_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	keywords := result.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	_, err := b.pool.Exec(ctx, query,
		result.RunID,
		result.Title,
		result.Link,
		result.Snippet,
		result.DisplayLink,
		result.FormattedURL,
		result.SourceSite,
		keywords,
		result.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.SearchResult, error) {
	query := `SELECT run_id, title, link, snippet, display_link, formatted_url, source_site, search_keywords, fetched_at FROM search_results WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Site != "" {
		query += fmt.Sprintf(` AND source_site = $%d`, paramCount)
		args = append(args, filter.Site)
		paramCount++
	}
	if filter.RunID != "" {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		args = append(args, filter.RunID)
		paramCount++
	}

	query += ` ORDER BY id ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult

		err := rows.Scan(
			&r.RunID, &r.Title, &r.Link, &r.Snippet, &r.DisplayLink,
			&r.FormattedURL, &r.SourceSite, &r.Keywords, &r.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
