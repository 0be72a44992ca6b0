// Package config loads run settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/ebookseek/internal/sites"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyEnvFile           = "ENV_FILE"
	KeyAPIKey            = "API_KEY"
	KeyEngineID          = "SEARCH_ENGINE_ID"
	KeyKeywords          = "KEYWORDS"
	KeyFileTypes         = "FILETYPES"
	KeyMaxResultsPerSite = "MAX_RESULTS_PER_SITE"
	KeySitesFile         = "SITES_FILE"
	KeyOutputFile        = "OUTPUT_FILE"
	KeyDisplayLimit      = "DISPLAY_LIMIT"
	KeySitePause         = "SITE_PAUSE"
	KeyHTTPTimeout       = "HTTP_TIMEOUT"
	KeyTLSProfile        = "TLS_PROFILE"
	KeyAPIEndpoint       = "API_ENDPOINT"
	KeyExportSinks       = "EXPORT_SINKS"
	KeyJSONFile          = "JSON_FILE"
	KeySQLiteDSN         = "SQLITE_DSN"
	KeyPostgresDSN       = "POSTGRES_DSN"
	KeyReportHTML        = "REPORT_HTML"
	KeyMetricsTextfile   = "METRICS_TEXTFILE"
	KeyMetricsPort       = "METRICS_PORT"
	KeyLogLevel          = "LOG_LEVEL"
	KeyLogFormat         = "LOG_FORMAT"
	KeyLogFile           = "LOG_FILE"
)

const (
	DefaultEnvFile           = ".env"
	DefaultOutputFile        = "ebook_search_results.csv"
	DefaultMaxResultsPerSite = 10
	DefaultDisplayLimit      = 20
	DefaultSitePause         = time.Second
	DefaultHTTPTimeout       = 30 * time.Second
)

var (
	ErrMissingAPIKey     = errors.New("API_KEY is not set")
	ErrMissingEngineID   = errors.New("SEARCH_ENGINE_ID is not set")
	ErrMissingKeywords   = errors.New("KEYWORDS is not set")
	ErrInvalidMaxResults = errors.New("MAX_RESULTS_PER_SITE must be a positive integer")
)

// Sink names accepted in EXPORT_SINKS.
const (
	SinkJSON     = "json"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Config is the resolved run configuration. It is loaded once and passed by
// value; callers must not modify the slices it holds.
type Config struct {
	APIKey            string
	EngineID          string
	Keywords          []string
	FileTypes         []string
	MaxResultsPerSite int

	SitesFile    string
	OutputFile   string
	DisplayLimit int
	SitePause    time.Duration

	HTTPTimeout time.Duration
	TLSProfile  string
	APIEndpoint string

	ExportSinks []string
	JSONFile    string
	SQLiteDSN   string
	PostgresDSN string
	ReportHTML  string

	MetricsTextfile string
	MetricsPort     int

	LogLevel  string
	LogFormat string
	LogFile   string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyMaxResultsPerSite, DefaultMaxResultsPerSite)
	v.SetDefault(KeySitesFile, sites.DefaultFile)
	v.SetDefault(KeyOutputFile, DefaultOutputFile)
	v.SetDefault(KeyDisplayLimit, DefaultDisplayLimit)
	v.SetDefault(KeySitePause, DefaultSitePause)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyTLSProfile, "go")
	v.SetDefault(KeyJSONFile, "ebook_search_results.ndjson")
	v.SetDefault(KeySQLiteDSN, "ebook_search_results.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.AutomaticEnv()
	return v
}

// Load reads the .env file named by ENV_FILE (default ".env") if it exists,
// overlays the process environment and validates the result.
func Load() (Config, error) {
	envFile := os.Getenv(KeyEnvFile)
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	return LoadFile(envFile)
}

// LoadFile is Load with an explicit env file path. A missing file is not an
// error; process environment variables take precedence over file values.
func LoadFile(envFile string) (Config, error) {
	v := newViper()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	maxResults, err := strconv.Atoi(strings.TrimSpace(v.GetString(KeyMaxResultsPerSite)))
	if err != nil || maxResults <= 0 {
		return Config{}, fmt.Errorf("%w: got %q", ErrInvalidMaxResults, v.GetString(KeyMaxResultsPerSite))
	}

	sitePause, err := time.ParseDuration(v.GetString(KeySitePause))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", KeySitePause, err)
	}
	httpTimeout, err := time.ParseDuration(v.GetString(KeyHTTPTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", KeyHTTPTimeout, err)
	}
	displayLimit, err := strconv.Atoi(v.GetString(KeyDisplayLimit))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", KeyDisplayLimit, err)
	}
	metricsPort := 0
	if raw := strings.TrimSpace(v.GetString(KeyMetricsPort)); raw != "" {
		if metricsPort, err = strconv.Atoi(raw); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", KeyMetricsPort, err)
		}
	}

	cfg := Config{
		APIKey:            strings.TrimSpace(v.GetString(KeyAPIKey)),
		EngineID:          strings.TrimSpace(v.GetString(KeyEngineID)),
		Keywords:          SplitList(v.GetString(KeyKeywords)),
		FileTypes:         SplitList(v.GetString(KeyFileTypes)),
		MaxResultsPerSite: maxResults,
		SitesFile:         v.GetString(KeySitesFile),
		OutputFile:        v.GetString(KeyOutputFile),
		DisplayLimit:      displayLimit,
		SitePause:         sitePause,
		HTTPTimeout:       httpTimeout,
		TLSProfile:        strings.ToLower(strings.TrimSpace(v.GetString(KeyTLSProfile))),
		APIEndpoint:       strings.TrimSpace(v.GetString(KeyAPIEndpoint)),
		ExportSinks:       SplitList(strings.ToLower(v.GetString(KeyExportSinks))),
		JSONFile:          v.GetString(KeyJSONFile),
		SQLiteDSN:         v.GetString(KeySQLiteDSN),
		PostgresDSN:       v.GetString(KeyPostgresDSN),
		ReportHTML:        v.GetString(KeyReportHTML),
		MetricsTextfile:   v.GetString(KeyMetricsTextfile),
		MetricsPort:       metricsPort,
		LogLevel:          v.GetString(KeyLogLevel),
		LogFormat:         v.GetString(KeyLogFormat),
		LogFile:           v.GetString(KeyLogFile),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings a search cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.EngineID == "" {
		return ErrMissingEngineID
	}
	if len(c.Keywords) == 0 {
		return ErrMissingKeywords
	}
	if c.MaxResultsPerSite <= 0 {
		return ErrInvalidMaxResults
	}
	if c.SitePause < 0 {
		return fmt.Errorf("%s must not be negative", KeySitePause)
	}
	for _, s := range c.ExportSinks {
		switch s {
		case SinkJSON, SinkSQLite:
		case SinkPostgres:
			if c.PostgresDSN == "" {
				return fmt.Errorf("%s is required for the postgres sink", KeyPostgresDSN)
			}
		default:
			return fmt.Errorf("unknown export sink %q", s)
		}
	}
	return nil
}

// HasSink reports whether name was listed in EXPORT_SINKS.
func (c Config) HasSink(name string) bool {
	return slices.Contains(c.ExportSinks, name)
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (c Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// String renders the configuration for display with the key masked.
func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "API key:            %s\n", c.MaskedAPIKey())
	fmt.Fprintf(&b, "Search engine id:   %s\n", c.EngineID)
	fmt.Fprintf(&b, "Keywords:           %s\n", strings.Join(c.Keywords, ", "))
	fmt.Fprintf(&b, "File types:         %s\n", strings.Join(c.FileTypes, ", "))
	fmt.Fprintf(&b, "Max results/site:   %d\n", c.MaxResultsPerSite)
	fmt.Fprintf(&b, "Sites file:         %s\n", c.SitesFile)
	fmt.Fprintf(&b, "Output file:        %s\n", c.OutputFile)
	fmt.Fprintf(&b, "Site pause:         %s\n", c.SitePause)
	fmt.Fprintf(&b, "Export sinks:       %s\n", strings.Join(c.ExportSinks, ", "))
	return b.String()
}

// SplitList splits a comma-separated value, trimming blanks and dropping
// empty entries.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
