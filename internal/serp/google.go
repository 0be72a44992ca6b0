package serp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/ebookseek/internal/metrics"
	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// MaxPerPage is the most items the Custom Search API returns per call.
	MaxPerPage = 10
	// MaxStart is the highest start offset the API accepts.
	MaxStart = 91
)

// GoogleCSEConfig configures a GoogleCSE provider.
type GoogleCSEConfig struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL, mainly for tests.
	Endpoint   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// GoogleCSE implements SERPProvider on top of the Google Custom Search JSON API.
type GoogleCSE struct {
	svc      *customsearch.Service
	apiKey   string
	engineID string
	logger   *slog.Logger
}

var _ SERPProvider = (*GoogleCSE)(nil)

// NewGoogleCSE creates the API client. No request is made until Search.
func NewGoogleCSE(ctx context.Context, cfg GoogleCSEConfig) (*GoogleCSE, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, errors.New("google cse: api key and engine id are required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// A caller supplied HTTP client bypasses option.WithAPIKey, so the key
	// is attached to every call in fetchPage instead.
	opts := []option.ClientOption{option.WithHTTPClient(cfg.HTTPClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google cse: create service: %w", err)
	}

	return &GoogleCSE{
		svc:      svc,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		logger:   cfg.Logger,
	}, nil
}

// Search pages through the API with start offsets 1, 11, 21, ... until limit
// items are collected, the offset passes MaxStart, a page comes back empty or
// the API answers with an error status. An error status ends pagination but
// keeps the items already collected; transport and decoding failures are
// returned as errors.
func (g *GoogleCSE) Search(ctx context.Context, encodedQuery string, limit int) ([]Item, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit cannot be negative: %d", limit)
	}
	query, err := url.PathUnescape(encodedQuery)
	if err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}

	items := make([]Item, 0, min(limit, MaxStart+MaxPerPage-1))
	for start := 1; len(items) < limit && start <= MaxStart; start += MaxPerPage {
		num := min(MaxPerPage, limit-len(items))

		page, err := g.fetchPage(ctx, query, start, num)
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				g.logger.Warn("API error", "status", apiErr.Code, "message", apiErr.Message, "start", start)
				break
			}
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		items = append(items, page...)
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (g *GoogleCSE) fetchPage(ctx context.Context, query string, start, num int) ([]Item, error) {
	g.logger.Debug("requesting page", "query", query, "start", start, "num", num)

	began := time.Now()
	resp, err := g.svc.Cse.List().
		Context(ctx).
		Cx(g.engineID).
		Q(query).
		Start(int64(start)).
		Num(int64(num)).
		Do(googleapi.QueryParameter("key", g.apiKey))
	elapsed := time.Since(began)

	if err != nil {
		status := "error"
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			status = strconv.Itoa(apiErr.Code)
		}
		metrics.RecordAPICall(status, elapsed)
		return nil, fmt.Errorf("custom search start=%d: %w", start, err)
	}
	metrics.RecordAPICall(strconv.Itoa(resp.HTTPStatusCode), elapsed)

	page := make([]Item, 0, len(resp.Items))
	for _, r := range resp.Items {
		if r == nil {
			continue
		}
		item := Item{
			Title:        r.Title,
			Link:         r.Link,
			Snippet:      r.Snippet,
			DisplayLink:  r.DisplayLink,
			FormattedURL: r.FormattedUrl,
		}
		if item.Title == "" {
			item.Title = textFromHTML(r.HtmlTitle)
		}
		if item.Snippet == "" {
			item.Snippet = textFromHTML(r.HtmlSnippet)
		}
		page = append(page, item)
	}
	return page, nil
}

// textFromHTML strips markup such as the <b> highlighting the API puts in
// htmlTitle and htmlSnippet.
func textFromHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
