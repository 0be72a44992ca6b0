package serp

import (
	"errors"
	"net/url"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	cases := []struct {
		name      string
		keywords  []string
		site      string
		fileTypes []string
		want      string
	}{
		{
			name:      "site keywords and file types",
			keywords:  []string{"Nietzsche", "Gay"},
			site:      "example.com",
			fileTypes: []string{"pdf", "epub"},
			want:      `site:example.com "Nietzsche" "Gay" filetype:pdf OR filetype:epub`,
		},
		{
			name:     "keywords only",
			keywords: []string{"Beyond Good and Evil"},
			want:     `"Beyond Good and Evil"`,
		},
		{
			name:      "single file type",
			keywords:  []string{"Kafka"},
			fileTypes: []string{"mobi"},
			want:      `"Kafka" filetype:mobi`,
		},
		{
			name:     "quote inside keyword is not escaped",
			keywords: []string{`The "Trial"`},
			site:     "archive.org",
			want:     `site:archive.org "The "Trial""`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := BuildQuery(tc.keywords, tc.site, tc.fileTypes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, q.String())
			}
		})
	}
}

func TestBuildQuery_NoKeywords(t *testing.T) {
	if _, err := BuildQuery(nil, "example.com", nil); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("expected ErrNoKeywords, got %v", err)
	}
}

func TestQuery_Encoded(t *testing.T) {
	q, _ := BuildQuery([]string{"Nietzsche", "Gay"}, "example.com", []string{"pdf"})

	want := "site%3Aexample.com%20%22Nietzsche%22%20%22Gay%22%20filetype%3Apdf"
	if got := q.Encoded(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	decoded, err := url.PathUnescape(q.Encoded())
	if err != nil {
		t.Fatalf("unexpected unescape error: %v", err)
	}
	if decoded != q.String() {
		t.Errorf("expected encoding to round-trip, got %q", decoded)
	}

	utf, _ := BuildQuery([]string{"Café/Bar"}, "", nil)
	if got := utf.Encoded(); got != "%22Caf%C3%A9/Bar%22" {
		t.Errorf("unexpected UTF-8 encoding %q", got)
	}
}
