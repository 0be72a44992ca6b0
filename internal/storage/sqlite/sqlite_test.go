package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/ebookseek/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "results.db")
	b, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rows := []*storage.SearchResult{
		{RunID: "run-1", Title: "Ecce Homo", Link: "https://a.org/ecce.pdf", SourceSite: "a.org", Keywords: []string{"Nietzsche"}, FetchedAt: now},
		{RunID: "run-1", Title: "Zarathustra", Link: "https://b.org/z.epub", SourceSite: "b.org", Keywords: []string{"Nietzsche"}, FetchedAt: now},
		{RunID: "run-2", Title: "Gay Science", Link: "https://a.org/gs.pdf", SourceSite: "a.org", Keywords: []string{"Nietzsche", "Gay"}, FetchedAt: now},
	}
	if err := storage.SaveAll(ctx, b, rows); err != nil {
		t.Fatalf("Failed to save results: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query results: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(all))
	}
	if all[0].Title != "Ecce Homo" {
		t.Errorf("Expected insertion order, got %s first", all[0].Title)
	}
	if !all[2].FetchedAt.Equal(now) {
		t.Errorf("Expected fetched_at %v, got %v", now, all[2].FetchedAt)
	}
	if len(all[2].Keywords) != 2 {
		t.Errorf("Expected 2 keywords, got %v", all[2].Keywords)
	}

	run2, err := b.Query(ctx, storage.Filter{RunID: "run-2"})
	if err != nil {
		t.Fatalf("Failed to query by run: %v", err)
	}
	if len(run2) != 1 || run2[0].Title != "Gay Science" {
		t.Errorf("Expected only run-2 row, got %v", run2)
	}

	siteA, err := b.Query(ctx, storage.Filter{Site: "a.org", Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query by site with offset: %v", err)
	}
	if len(siteA) != 1 || siteA[0].Title != "Gay Science" {
		t.Errorf("Expected second a.org row, got %v", siteA)
	}

	limited, err := b.Query(ctx, storage.Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to query with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 results, got %d", len(limited))
	}
}
