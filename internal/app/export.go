package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/FranksOps/ebookseek/internal/config"
	"github.com/FranksOps/ebookseek/internal/storage"
	"github.com/FranksOps/ebookseek/internal/storage/csvbackend"
	"github.com/FranksOps/ebookseek/internal/storage/jsonbackend"
	"github.com/FranksOps/ebookseek/internal/storage/postgres"
	"github.com/FranksOps/ebookseek/internal/storage/sqlite"
	"golang.org/x/sync/errgroup"
)

// Export writes results to the CSV output file and then, concurrently, to
// every sink named in cfg.ExportSinks. Nothing is written when results is
// empty.
func Export(ctx context.Context, cfg config.Config, results []*storage.SearchResult, out io.Writer, logger *slog.Logger) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results to save.")
		return nil
	}

	if err := exportTo(ctx, results, func(context.Context) (storage.Backend, error) {
		return csvbackend.New(cfg.OutputFile)
	}); err != nil {
		return fmt.Errorf("save %s: %w", cfg.OutputFile, err)
	}
	fmt.Fprintf(out, "Results saved to %s\n", cfg.OutputFile)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range cfg.ExportSinks {
		name := name
		open, err := sinkOpener(cfg, name)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := exportTo(gctx, results, open); err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			logger.Info("results exported", "sink", name, "results", len(results))
			return nil
		})
	}
	return g.Wait()
}

type opener func(ctx context.Context) (storage.Backend, error)

func sinkOpener(cfg config.Config, name string) (opener, error) {
	switch name {
	case config.SinkJSON:
		return func(context.Context) (storage.Backend, error) { return jsonbackend.New(cfg.JSONFile) }, nil
	case config.SinkSQLite:
		return func(context.Context) (storage.Backend, error) { return sqlite.New(cfg.SQLiteDSN) }, nil
	case config.SinkPostgres:
		return func(ctx context.Context) (storage.Backend, error) { return postgres.New(ctx, cfg.PostgresDSN) }, nil
	default:
		return nil, fmt.Errorf("unknown export sink %q", name)
	}
}

func exportTo(ctx context.Context, results []*storage.SearchResult, open opener) (err error) {
	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); err == nil {
			err = cerr
		}
	}()
	return storage.SaveAll(ctx, b, results)
}
