// Package search runs one query per site and aggregates the tagged results.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/FranksOps/ebookseek/internal/config"
	"github.com/FranksOps/ebookseek/internal/metrics"
	"github.com/FranksOps/ebookseek/internal/serp"
	"github.com/FranksOps/ebookseek/internal/storage"
)

// Pauser is called after every site; *ratelimit.Limiter satisfies it.
type Pauser interface {
	Pause(ctx context.Context) error
}

// Options holds the collaborators of a Searcher. Zero values are replaced by
// no-op or default implementations.
type Options struct {
	Out    io.Writer // progress lines
	Logger *slog.Logger
	Pauser Pauser
	RunID  string
	Now    func() time.Time
}

// Searcher queries a provider once per site, in order.
type Searcher struct {
	provider  serp.SERPProvider
	keywords  []string
	fileTypes []string
	perSite   int
	opts      Options
}

// New creates a Searcher for the keywords, file types and per-site cap in cfg.
func New(provider serp.SERPProvider, cfg config.Config, opts Options) *Searcher {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pauser == nil {
		opts.Pauser = noPause{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Searcher{
		provider:  provider,
		keywords:  slices.Clone(cfg.Keywords),
		fileTypes: slices.Clone(cfg.FileTypes),
		perSite:   cfg.MaxResultsPerSite,
		opts:      opts,
	}
}

// Run searches every site and returns the concatenated results in site order.
// A site whose search fails is logged and contributes nothing. Only context
// cancellation stops the run early; the results gathered so far are returned
// with the context error.
func (s *Searcher) Run(ctx context.Context, sites []string) ([]*storage.SearchResult, error) {
	var all []*storage.SearchResult

	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		fmt.Fprintf(s.opts.Out, "Searching on %s...\n", site)

		results, err := s.searchSite(ctx, site)
		metrics.RecordSite(site, len(results), err)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			fmt.Fprintf(s.opts.Out, "Error searching on %s: %v\n", site, err)
			s.opts.Logger.Error("error searching site", "site", site, "err", err)
		} else {
			s.opts.Logger.Debug("site searched", "site", site, "results", len(results))
			all = append(all, results...)
		}

		if err := s.opts.Pauser.Pause(ctx); err != nil {
			return all, err
		}
	}

	return all, nil
}

func (s *Searcher) searchSite(ctx context.Context, site string) ([]*storage.SearchResult, error) {
	q, err := serp.BuildQuery(s.keywords, site, s.fileTypes)
	if err != nil {
		return nil, err
	}

	items, err := s.provider.Search(ctx, q.Encoded(), s.perSite)
	if err != nil {
		return nil, err
	}
	if len(items) > s.perSite {
		items = items[:s.perSite]
	}

	fetchedAt := s.opts.Now().UTC()
	results := make([]*storage.SearchResult, 0, len(items))
	for _, it := range items {
		results = append(results, &storage.SearchResult{
			RunID:        s.opts.RunID,
			Title:        it.Title,
			Link:         it.Link,
			Snippet:      it.Snippet,
			DisplayLink:  it.DisplayLink,
			FormattedURL: it.FormattedURL,
			SourceSite:   site,
			Keywords:     s.keywords,
			FetchedAt:    fetchedAt,
		})
	}
	return results, nil
}

type noPause struct{}

func (noPause) Pause(ctx context.Context) error { return ctx.Err() }
