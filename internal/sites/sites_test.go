package sites

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ebook_sites.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write site list: %v", err)
	}
	return path
}

func TestLoad_FiltersAndKeepsOrder(t *testing.T) {
	path := writeFile(t, "archive.org\n\n# comment\nhttps://bad.example.com/path\n  gutenberg.org  \nlib-gen.rs\nnot a host\nlocalhost\narchive.org\nfoo.c\n")

	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"archive.org", "gutenberg.org", "lib-gen.rs", "archive.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if !errors.Is(err, ErrSitesFileMissing) {
		t.Fatalf("expected ErrSitesFileMissing, got %v", err)
	}
}

func TestLoad_NoValidLines(t *testing.T) {
	path := writeFile(t, "\n# nothing here\nhttp://x\n")
	_, err := Load(path, nil)
	if !errors.Is(err, ErrNoSites) {
		t.Fatalf("expected ErrNoSites, got %v", err)
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"archive.org":          true,
		"sub.domain.co.uk":     true,
		"my-site.io":           true,
		"archive.org/":         false,
		"https://archive.org":  false,
		"archive":              false,
		"archive.o":            false,
		"archive.org1":         false,
		"":                     false,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Errorf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}
