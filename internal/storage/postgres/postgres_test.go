package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/FranksOps/ebookseek/internal/storage"
	"github.com/google/uuid"
)

func TestPostgresBackend(t *testing.T) {
	// Only run this test if EBOOKSEEK_TEST_PG_DSN is set
	dsn := os.Getenv("EBOOKSEEK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: EBOOKSEEK_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	runID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	res := &storage.SearchResult{
		RunID:        runID,
		Title:        "Beyond Good and Evil",
		Link:         "https://example-pg.org/bge.pdf",
		Snippet:      "Prelude to a philosophy of the future",
		DisplayLink:  "example-pg.org",
		FormattedURL: "https://example-pg.org/bge.pdf",
		SourceSite:   "example-pg.org",
		Keywords:     []string{"Nietzsche", "Evil"},
		FetchedAt:    now,
	}

	if err := b.Save(ctx, res); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{RunID: runID})
	if err != nil {
		t.Fatalf("Failed to query results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.Title != res.Title || got.SourceSite != res.SourceSite {
		t.Errorf("Unexpected row %+v", got)
	}
	if len(got.Keywords) != 2 || got.Keywords[1] != "Evil" {
		t.Errorf("Expected keyword array to round-trip, got %v", got.Keywords)
	}
	if !got.FetchedAt.Equal(now) {
		t.Errorf("Expected fetched_at %v, got %v", now, got.FetchedAt)
	}
}
