package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/FranksOps/ebookseek/internal/storage"
)

const (
	// DefaultListingLimit is how many results WriteListing shows by default.
	DefaultListingLimit = 20
	// SnippetWidth is the number of snippet characters shown per result.
	SnippetWidth = 100
)

// SiteCount is the number of results one site contributed.
type SiteCount struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// Summary contains aggregated statistics about a search run.
type Summary struct {
	RunID        string      `json:"run_id,omitempty"`
	Keywords     []string    `json:"keywords,omitempty"`
	TotalResults int         `json:"total_results"`
	BySite       []SiteCount `json:"by_site"`
}

// GenerateSummary counts results per source site. BySite is sorted by
// descending count; sites with equal counts keep first-appearance order.
func GenerateSummary(results []*storage.SearchResult) Summary {
	s := Summary{
		TotalResults: len(results),
		BySite:       []SiteCount{},
	}
	if len(results) == 0 {
		return s
	}

	s.RunID = results[0].RunID
	s.Keywords = results[0].Keywords

	index := make(map[string]int)
	for _, r := range results {
		site := r.SourceSite
		if site == "" {
			site = "Unknown"
		}
		i, ok := index[site]
		if !ok {
			i = len(s.BySite)
			index[site] = i
			s.BySite = append(s.BySite, SiteCount{Site: site})
		}
		s.BySite[i].Count++
	}

	sortByCountDesc(s.BySite)
	return s
}

// sortByCountDesc is a stable insertion sort; the slice is one entry per
// site and stays small.
func sortByCountDesc(counts []SiteCount) {
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Count > counts[j-1].Count; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}
}

type listingRow struct {
	N       int
	Title   string
	Site    string
	URL     string
	Snippet string
}

const listingTmpl = `
=== {{.Total}} results found ===

{{range .Rows -}}
{{.N}}. {{.Title}}
   Site: {{.Site}}
   URL: {{.URL}}
   Description: {{.Snippet}}...
{{$.Rule}}
{{end -}}
`

var listingTemplate = texttemplate.Must(texttemplate.New("listing").Parse(listingTmpl))

// WriteListing prints the first limit results in a human-readable form.
// A limit <= 0 uses DefaultListingLimit.
func WriteListing(w io.Writer, results []*storage.SearchResult, limit int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	if limit <= 0 {
		limit = DefaultListingLimit
	}

	rows := make([]listingRow, 0, min(limit, len(results)))
	for i, r := range results {
		if i >= limit {
			break
		}
		site := r.SourceSite
		if site == "" {
			site = "N/A"
		}
		rows = append(rows, listingRow{
			N:       i + 1,
			Title:   r.Title,
			Site:    site,
			URL:     r.Link,
			Snippet: Truncate(r.Snippet, SnippetWidth),
		})
	}

	data := struct {
		Total int
		Rows  []listingRow
		Rule  string
	}{len(results), rows, strings.Repeat("-", 80)}

	if err := listingTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render listing: %w", err)
	}
	return nil
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes the statistics block: the total and, when there are
// results, the per-site distribution.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `
Statistics:
Total results: {{.TotalResults}}
{{- if .BySite}}
Distribution by site:
{{- range .BySite}}
  {{.Site}}: {{.Count}} results
{{- end}}
{{- end}}
`

	t, err := texttemplate.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report of the summary and the results.
func WriteHTML(w io.Writer, summary Summary, results []*storage.SearchResult) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Ebook Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Ebook Search Report</h1>
  {{- if .Summary.Keywords}}
  <p><strong>Keywords:</strong> {{join .Summary.Keywords ", "}}</p>
  {{- end}}

  <div class="stat-card">
    <div>Total Results</div>
    <div class="stat-val" id="total">{{.Summary.TotalResults}}</div>
  </div>
  <div class="stat-card">
    <div>Sites With Results</div>
    <div class="stat-val">{{len .Summary.BySite}}</div>
  </div>

  <h3>Distribution By Site</h3>
  <table id="by-site">
    <tr><th>Site</th><th>Results</th></tr>
    {{- range .Summary.BySite}}
    <tr><td>{{.Site}}</td><td>{{.Count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Results</h3>
  <table id="results">
    <tr><th>Title</th><th>Site</th><th>Snippet</th></tr>
    {{- range .Results}}
    <tr><td><a href="{{.Link}}">{{.Title}}</a></td><td>{{.SourceSite}}</td><td>{{.Snippet}}</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Funcs(template.FuncMap{"join": strings.Join}).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html report: %w", err)
	}

	data := struct {
		Summary Summary
		Results []*storage.SearchResult
	}{summary, results}

	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	return nil
}
