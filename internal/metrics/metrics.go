package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebookseek_api_requests_total",
			Help: "Total number of search API page requests",
		},
		[]string{"status"},
	)

	APIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ebookseek_api_request_duration_seconds",
			Help:    "Duration of search API page requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	ResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebookseek_results_total",
			Help: "Total number of results collected per site",
		},
		[]string{"site"},
	)

	SiteErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebookseek_site_errors_total",
			Help: "Total number of sites whose search failed",
		},
		[]string{"site"},
	)
)

// RecordAPICall counts one page request. status is the HTTP status code or
// "error" when no response was received.
func RecordAPICall(status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(status).Inc()
	APIRequestDuration.Observe(d.Seconds())
}

// RecordSite updates per-site counters after a site has been searched.
func RecordSite(site string, results int, err error) {
	if err != nil {
		SiteErrorsTotal.WithLabelValues(site).Inc()
		return
	}
	ResultsTotal.WithLabelValues(site).Add(float64(results))
}

// WriteTextfile writes the default registry to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
