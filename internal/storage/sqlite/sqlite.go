package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/ebookseek/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS search_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	snippet TEXT NOT NULL,
	display_link TEXT NOT NULL,
	formatted_url TEXT NOT NULL,
	source_site TEXT NOT NULL,
	search_keywords TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_results_run ON search_results (run_id);
`

// New creates a SQLite-backed storage.Backend. Rows accumulate across runs
// and are told apart by run id.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, result *storage.SearchResult) error {
	query := `
	INSERT INTO search_results (
		run_id, title, link, snippet, display_link, formatted_url, source_site, search_keywords, fetched_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		result.RunID,
		result.Title,
		result.Link,
		result.Snippet,
		result.DisplayLink,
		result.FormattedURL,
		result.SourceSite,
		storage.JoinKeywords(result.Keywords),
		result.FetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.SearchResult, error) {
	query := `SELECT run_id, title, link, snippet, display_link, formatted_url, source_site, search_keywords, fetched_at FROM search_results WHERE 1=1`
	args := []any{}

	if filter.Site != "" {
		query += ` AND source_site = ?`
		args = append(args, filter.Site)
	}
	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}

	query += ` ORDER BY id ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT clause
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		var keywords string

		err := rows.Scan(
			&r.RunID, &r.Title, &r.Link, &r.Snippet, &r.DisplayLink,
			&r.FormattedURL, &r.SourceSite, &keywords, &r.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Keywords = storage.SplitKeywords(keywords)

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
