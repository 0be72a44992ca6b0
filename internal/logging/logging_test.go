package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "site", "archive.org")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered at warn level")
	}
	if !strings.Contains(out, "site=archive.org") {
		t.Errorf("expected text attributes, got %q", out)
	}
}

func TestNew_JSONWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "ebookseek.log")

	logger, closer, err := New(Config{Format: "json", File: path}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("searching", "site", "gutenberg.org")
	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	if !strings.Contains(buf.String(), `"site":"gutenberg.org"`) {
		t.Errorf("expected JSON output on writer, got %q", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"searching"`) {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected invalid level to fail")
	}
	if _, _, err := New(Config{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected invalid format to fail")
	}
	if l, err := ParseLevel("DEBUG"); err != nil || l != slog.LevelDebug {
		t.Errorf("expected debug level, got %v %v", l, err)
	}
}
