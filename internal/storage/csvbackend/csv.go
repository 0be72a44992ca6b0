package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/ebookseek/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// Headers defines the CSV column order.
var Headers = []string{
	"title",
	"link",
	"snippet",
	"displayLink",
	"formattedUrl",
	"source_site",
	"search_keywords",
}

// New creates a CSV-backed storage.Backend. An existing file at filePath is
// truncated and the header row written immediately.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return &csvBackend{file: f, w: w}, nil
}

// Open opens an existing CSV export read-only, for Query.
func Open(filePath string) (storage.Backend, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, result *storage.SearchResult) error {
	if b.w == nil {
		return fmt.Errorf("csv %s opened read-only", b.file.Name())
	}

	record := []string{
		result.Title,
		result.Link,
		result.Snippet,
		result.DisplayLink,
		result.FormattedURL,
		result.SourceSite,
		storage.JoinKeywords(result.Keywords),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.w.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	b.w.Flush()

	if err := b.w.Error(); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.SearchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek csv: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	_, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return []*storage.SearchResult{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var matched []*storage.SearchResult
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		if len(record) != len(Headers) {
			continue // skip malformed rows
		}

		res := &storage.SearchResult{
			Title:        record[0],
			Link:         record[1],
			Snippet:      record[2],
			DisplayLink:  record[3],
			FormattedURL: record[4],
			SourceSite:   record[5],
			Keywords:     storage.SplitKeywords(record[6]),
		}
		if !filter.Match(res) {
			continue
		}
		matched = append(matched, res)
	}

	return filter.Page(matched), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
