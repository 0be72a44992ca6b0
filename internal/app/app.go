// Package app wires configuration, search, reporting and export into a run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/FranksOps/ebookseek/internal/config"
	"github.com/FranksOps/ebookseek/internal/fingerprint"
	"github.com/FranksOps/ebookseek/internal/metrics"
	"github.com/FranksOps/ebookseek/internal/report"
	"github.com/FranksOps/ebookseek/internal/search"
	"github.com/FranksOps/ebookseek/internal/serp"
	"github.com/FranksOps/ebookseek/internal/sites"
	"github.com/FranksOps/ebookseek/internal/storage"
	"github.com/FranksOps/ebookseek/pkg/httpclient"
	"github.com/FranksOps/ebookseek/pkg/ratelimit"
	"github.com/FranksOps/ebookseek/pkg/useragent"
	"github.com/google/uuid"
)

// Options carries the collaborators of a run. Zero values select the
// defaults: stdout, slog.Default, the Google Custom Search API and a fresh
// run id.
type Options struct {
	Out      io.Writer
	Logger   *slog.Logger
	Provider serp.SERPProvider
	RunID    string
}

func (o *Options) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
}

// Run executes one full search: load the site list, query every site, print
// the listing, export the results and print the per-site statistics.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	opts.defaults()
	logger := opts.Logger.With("run_id", opts.RunID)

	siteList, err := sites.Load(cfg.SitesFile, logger)
	if err != nil {
		return err
	}

	provider := opts.Provider
	if provider == nil {
		if provider, err = NewProvider(ctx, cfg, logger); err != nil {
			return err
		}
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.Start(cfg.MetricsPort, logger)
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				logger.Warn("metrics server shutdown", "err", err)
			}
		}()
	}

	fmt.Fprintf(opts.Out, "Searching for books with keywords: %s\n", strings.Join(cfg.Keywords, ", "))
	fmt.Fprintln(opts.Out, strings.Repeat("=", 50))

	searcher := search.New(provider, cfg, search.Options{
		Out:    opts.Out,
		Logger: logger,
		Pauser: ratelimit.NewLimiter(cfg.SitePause, 0),
		RunID:  opts.RunID,
	})
	results, err := searcher.Run(ctx, siteList)
	if err != nil {
		return fmt.Errorf("search aborted after %d results: %w", len(results), err)
	}
	logger.Info("search finished", "sites", len(siteList), "results", len(results))

	if err := report.WriteListing(opts.Out, results, cfg.DisplayLimit); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}

	if err := Export(ctx, cfg, results, opts.Out, logger); err != nil {
		return err
	}

	summary := report.GenerateSummary(results)
	if cfg.ReportHTML != "" && len(results) > 0 {
		if err := writeHTMLReport(cfg.ReportHTML, summary, results); err != nil {
			return err
		}
		logger.Info("html report written", "path", cfg.ReportHTML)
	}

	if err := report.WriteText(opts.Out, summary); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
	}
	return nil
}

// NewProvider builds the Google Custom Search provider over an HTTP client
// using the configured timeout and TLS profile.
func NewProvider(ctx context.Context, cfg config.Config, logger *slog.Logger) (*serp.GoogleCSE, error) {
	profile, err := fingerprint.ParseProfile(cfg.TLSProfile)
	if err != nil {
		return nil, err
	}
	transport, err := fingerprint.Transport(profile, nil)
	if err != nil {
		return nil, fmt.Errorf("tls transport: %w", err)
	}

	// Browser fingerprints send a matching browser User-Agent.
	ua := httpclient.DefaultUserAgent
	if profile != fingerprint.ProfileGo {
		ua = useragent.ForBrowser(string(profile)).GetRandom()
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      cfg.HTTPTimeout,
		MaxRedirects: 5,
		UserAgent:    ua,
		Transport:    transport,
	})

	return serp.NewGoogleCSE(ctx, serp.GoogleCSEConfig{
		APIKey:     cfg.APIKey,
		EngineID:   cfg.EngineID,
		Endpoint:   cfg.APIEndpoint,
		HTTPClient: client.Client,
		Logger:     logger,
	})
}

func writeHTMLReport(path string, summary report.Summary, results []*storage.SearchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	if err := report.WriteHTML(f, summary, results); err != nil {
		f.Close()
		return fmt.Errorf("write html report: %w", err)
	}
	return f.Close()
}
