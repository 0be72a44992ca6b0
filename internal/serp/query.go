package serp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoKeywords is returned by BuildQuery when no keyword is given.
var ErrNoKeywords = errors.New("at least one keyword is required")

// Query is a search engine query string.
type Query struct {
	raw string
}

// BuildQuery assembles a query from exact-phrase keywords, an optional site
// restriction and an optional file-type alternation:
//
//	site:example.com "Nietzsche" "Gay" filetype:pdf OR filetype:epub
//
// Quote characters inside keywords are passed through untouched.
func BuildQuery(keywords []string, site string, fileTypes []string) (Query, error) {
	if len(keywords) == 0 {
		return Query{}, ErrNoKeywords
	}

	var b strings.Builder
	if site != "" {
		fmt.Fprintf(&b, "site:%s ", site)
	}

	for i, kw := range keywords {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		b.WriteString(kw)
		b.WriteByte('"')
	}

	if len(fileTypes) > 0 {
		filters := make([]string, len(fileTypes))
		for i, ft := range fileTypes {
			filters[i] = "filetype:" + ft
		}
		b.WriteByte(' ')
		b.WriteString(strings.Join(filters, " OR "))
	}

	return Query{raw: b.String()}, nil
}

// String returns the query as the search engine reads it.
func (q Query) String() string {
	return q.raw
}

// Encoded returns the percent-encoded query. Unreserved characters and '/'
// are kept; everything else, including spaces, is escaped byte by byte.
func (q Query) Encoded() string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(q.raw) * 3)
	for i := 0; i < len(q.raw); i++ {
		c := q.raw[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '/':
		return true
	}
	return false
}
