package app

import (
	"context"
	"fmt"
	"io"

	"github.com/FranksOps/ebookseek/internal/report"
	"github.com/FranksOps/ebookseek/internal/storage"
	"github.com/FranksOps/ebookseek/internal/storage/csvbackend"
)

// ShowReport re-prints the listing and per-site statistics from a CSV file
// written by an earlier run.
func ShowReport(ctx context.Context, path string, displayLimit int, out io.Writer) error {
	b, err := csvbackend.Open(path)
	if err != nil {
		return err
	}
	defer b.Close()

	results, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := report.WriteListing(out, results, displayLimit); err != nil {
		return err
	}
	return report.WriteText(out, report.GenerateSummary(results))
}
