// Package metrics defines the Prometheus metrics exported by localtube.
//
// Metrics cover the HTTP surface, library scans, duration probes, video
// streaming, thumbnail generation, and the filesystem watcher. All
// metrics are registered via promauto at package init and exposed on the
// dedicated metrics listener.
package metrics
