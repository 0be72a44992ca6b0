package csvbackend

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/ebookseek/internal/storage"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestCSVBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "results.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}

	ctx := context.Background()
	res1 := &storage.SearchResult{
		Title:        "Die fröhliche Wissenschaft",
		Link:         "https://archive.org/details/gay-science.pdf",
		Snippet:      "Nietzsche, \"Gay Science\"",
		DisplayLink:  "archive.org",
		FormattedURL: "https://archive.org/details/gay-science.pdf",
		SourceSite:   "archive.org",
		Keywords:     []string{"Nietzsche", "Gay"},
	}
	res2 := &storage.SearchResult{
		Title:      "The Gay Science",
		Link:       "https://gutenberg.org/ebooks/52881",
		SourceSite: "gutenberg.org",
		Keywords:   []string{"Nietzsche", "Gay"},
	}

	if err := b.Save(ctx, res1); err != nil {
		t.Fatalf("Failed to save result 1: %v", err)
	}
	if err := b.Save(ctx, res2); err != nil {
		t.Fatalf("Failed to save result 2: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(all))
	}
	if all[0].Title != res1.Title || all[0].Snippet != res1.Snippet {
		t.Errorf("Expected first row to round-trip, got %+v", all[0])
	}
	if len(all[1].Keywords) != 2 || all[1].Keywords[1] != "Gay" {
		t.Errorf("Expected keywords to round-trip, got %v", all[1].Keywords)
	}

	bySite, err := b.Query(ctx, storage.Filter{Site: "gutenberg.org"})
	if err != nil {
		t.Fatalf("Failed to query by site: %v", err)
	}
	if len(bySite) != 1 || bySite[0].Link != res2.Link {
		t.Errorf("Expected gutenberg row only, got %v", bySite)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	if n := countLines(t, filePath); n != 3 {
		t.Errorf("Expected 1 header + 2 data lines, got %d", n)
	}

	data, _ := os.ReadFile(filePath)
	if !strings.HasPrefix(string(data), "title,link,snippet,displayLink,formattedUrl,source_site,search_keywords\n") {
		t.Errorf("Unexpected header line: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestCSVBackend_Overwrites(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(filePath, []byte("stale\nstale\nstale\nstale\n"), 0644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	if err := b.Save(context.Background(), &storage.SearchResult{Title: "fresh"}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	b.Close()

	if n := countLines(t, filePath); n != 2 {
		t.Errorf("Expected previous contents to be replaced, got %d lines", n)
	}
}

func TestCSVBackend_OpenReadOnly(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "results.csv")
	b, _ := New(filePath)
	_ = b.Save(context.Background(), &storage.SearchResult{Title: "one", SourceSite: "a.org"})
	b.Close()

	r, err := Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer r.Close()

	got, err := r.Query(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(got) != 1 || got[0].Title != "one" {
		t.Errorf("Expected one row, got %v", got)
	}

	if err := r.Save(context.Background(), &storage.SearchResult{}); err == nil {
		t.Error("Expected Save on read-only backend to fail")
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error opening missing file")
	}
}
