package storage

import (
	"context"
	"strings"
	"time"
)

// SearchResult is one search API item tagged with the site and keywords that
// produced it.
type SearchResult struct {
	RunID        string    `json:"run_id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Snippet      string    `json:"snippet"`
	DisplayLink  string    `json:"displayLink"`
	FormattedURL string    `json:"formattedUrl"`
	SourceSite   string    `json:"source_site"`
	Keywords     []string  `json:"search_keywords"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Site   string
	RunID  string
	Limit  int
	Offset int
}

// Match reports whether r passes the site and run id conditions of f.
func (f Filter) Match(r *SearchResult) bool {
	if f.Site != "" && r.SourceSite != f.Site {
		return false
	}
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	return true
}

// Page applies Offset and Limit to an already filtered slice.
func (f Filter) Page(results []*SearchResult) []*SearchResult {
	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return []*SearchResult{}
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

// Backend is an export destination for search results.
type Backend interface {
	Save(ctx context.Context, result *SearchResult) error
	Query(ctx context.Context, filter Filter) ([]*SearchResult, error)
	Close() error
}

const keywordSep = ", "

// JoinKeywords flattens a keyword list into a single column value.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, keywordSep)
}

// SplitKeywords reverses JoinKeywords.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SaveAll writes every result to b in order, stopping at the first error.
func SaveAll(ctx context.Context, b Backend, results []*SearchResult) error {
	for _, r := range results {
		if err := b.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
