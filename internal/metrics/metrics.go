package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localtube_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localtube_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localtube_scan_runs_total",
			Help: "Total number of library scans",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "localtube_scan_duration_seconds",
			Help:    "Library scan duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	ScanFilesFound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localtube_scan_videos_found",
			Help: "Number of videos in the current catalog",
		},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_probes_total",
			Help: "Total number of duration probes",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "localtube_probe_duration_seconds",
			Help:    "Duration probe latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Streaming metrics
var (
	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_streams_total",
			Help: "Total number of stream requests by response class",
		},
		[]string{"status"}, // "full", "partial", "not_satisfiable", "not_found", "error"
	)

	StreamBytesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localtube_stream_bytes_sent_total",
			Help: "Total number of video bytes written to clients",
		},
	)

	StreamsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localtube_streams_in_flight",
			Help: "Number of streams currently being served",
		},
	)

	StreamClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localtube_stream_client_disconnects_total",
			Help: "Total number of streams ended by client disconnect",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_thumbnails_total",
			Help: "Total number of thumbnail requests by outcome",
		},
		[]string{"outcome"}, // "cache_hit", "generated", "sidecar", "failed"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "localtube_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localtube_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedRoots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "localtube_watcher_roots",
			Help: "Number of scan roots currently being watched",
		},
	)
)

// State store metrics
var (
	StateWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localtube_state_writes_total",
			Help: "Total number of state store writes",
		},
		[]string{"status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "localtube_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
