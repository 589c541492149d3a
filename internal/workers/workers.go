// Package workers sizes worker pools for the probe pipeline.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a task type, respecting container
// CPU limits via GOMAXPROCS.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count; use 0 for no limit.
// PROBE_WORKERS overrides the computed value.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("PROBE_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU). Duration
// probes spend their time waiting on an external process, so they get
// the I/O sizing.
func ForIO(limit int) int {
	return Count(2.0, limit)
}
