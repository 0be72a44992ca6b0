package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/FranksOps/ebookseek/internal/app"
	"github.com/FranksOps/ebookseek/internal/config"
	"github.com/FranksOps/ebookseek/internal/logging"
	"github.com/FranksOps/ebookseek/internal/sites"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ebookseek",
		Short: "Search ebook sites through the Google Custom Search API",
		Long: `ebookseek queries the Google Custom Search API once per site listed in
ebook_sites.txt, looking for ebooks matching the configured keywords and file
types. Results are printed, saved to CSV and summarized per site.

Configuration is read from the environment and an optional .env file:
  API_KEY, SEARCH_ENGINE_ID, KEYWORDS, FILETYPES, MAX_RESULTS_PER_SITE`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, closer, err := logging.New(logging.Config{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				File:   cfg.LogFile,
			}, os.Stderr)
			if err != nil {
				return err
			}
			defer closer.Close()
			slog.SetDefault(logger)

			ctx, cancel := app.SignalContext(cmd.Context(), logger)
			defer cancel()

			return app.Run(ctx, cfg, app.Options{Out: out, Logger: logger})
		},
	}

	// sites subcommand
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "Print the validated site list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			list, err := sites.Load(cfg.SitesFile, nil)
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	// config subcommand
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}

	// report subcommand
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-print the listing and statistics from the saved CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return app.ShowReport(cmd.Context(), cfg.OutputFile, cfg.DisplayLimit, out)
		},
	}

	// version subcommand
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "ebookseek v%s\n", version)
		},
	}

	rootCmd.AddCommand(sitesCmd, configCmd, reportCmd, versionCmd)
	return rootCmd
}
