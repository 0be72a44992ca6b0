package serp

import "context"

// Item is one entry of a search engine result page.
type Item struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	DisplayLink  string `json:"displayLink"`
	FormattedURL string `json:"formattedUrl"`
}

// SERPProvider abstracts a search engine that pages through results for a
// percent-encoded query (see Query.Encoded). The limit parameter caps the
// number of items returned.
type SERPProvider interface {
	Search(ctx context.Context, encodedQuery string, limit int) ([]Item, error)
}
