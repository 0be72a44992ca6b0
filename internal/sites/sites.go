// Package sites loads the list of domains a search is restricted to.
package sites

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// DefaultFile is the site list read when no path is configured.
const DefaultFile = "ebook_sites.txt"

var (
	// ErrSitesFileMissing is returned when the site list file does not exist.
	ErrSitesFileMissing = errors.New("site list file not found")
	// ErrNoSites is returned when the file holds no valid hostname.
	ErrNoSites = errors.New("no valid sites in site list")
)

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Valid reports whether line looks like a bare hostname.
func Valid(line string) bool {
	return hostnamePattern.MatchString(line)
}

// Load reads path and returns every trimmed line that is a valid hostname,
// in file order. Duplicates are kept.
func Load(path string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: please create %q with one domain per line", ErrSitesFileMissing, path)
		}
		return nil, fmt.Errorf("open site list: %w", err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !Valid(line) {
			if line != "" {
				logger.Debug("ignoring site line", "line", line)
			}
			continue
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read site list: %w", err)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSites, path)
	}

	logger.Info("loaded site list", "path", path, "sites", len(list))
	return list, nil
}
