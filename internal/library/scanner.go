package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"localtube/internal/logging"
	"localtube/internal/metrics"
)

// FolderSource supplies the user-configured custom scan roots. The
// scanner only ever reads from it; folder management belongs to the
// state store.
type FolderSource interface {
	CustomFolders() []string
}

// Scanner discovers video files under the configured roots and builds
// catalog entries for them. Scans tolerate missing roots, unreadable
// files, and probe failures; none of those abort the scan.
type Scanner struct {
	defaultRoots []string
	folders      FolderSource
	prober       Prober
	probeWorkers int
}

// NewScanner creates a Scanner. probeWorkers bounds how many duration
// probes run concurrently; values below 1 are treated as 1.
func NewScanner(defaultRoots []string, folders FolderSource, prober Prober, probeWorkers int) *Scanner {
	if probeWorkers < 1 {
		probeWorkers = 1
	}
	return &Scanner{
		defaultRoots: defaultRoots,
		folders:      folders,
		prober:       prober,
		probeWorkers: probeWorkers,
	}
}

// DefaultRoots returns the fixed set of locations scanned in addition to
// the user's custom folders: the user's Downloads directory, the
// application media directory, and the current working directory.
func DefaultRoots(mediaDir string) []string {
	var roots []string

	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "Downloads"))
	}
	if mediaDir != "" {
		roots = append(roots, mediaDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}

	return roots
}

// candidate is a file that survived listing and filtering and is waiting
// for its duration probe.
type candidate struct {
	path string
	info os.FileInfo
}

// Scan walks the effective root set and returns a fresh slice of catalog
// entries sorted by title. An empty result is a valid state, not an
// error: no accessible roots simply means an empty library. Cancelling
// ctx aborts the scan with an error and no partial result.
func (s *Scanner) Scan(ctx context.Context) ([]Video, error) {
	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
		metrics.ScanRunsTotal.Inc()
	}()

	candidates := s.collect()
	videos := s.probeAndBuild(ctx, candidates)

	// A canceled scan stopped enqueuing partway through the listing.
	// The truncated slice must never become the catalog: files still on
	// disk would vanish from the library until the next scan.
	if err := ctx.Err(); err != nil {
		logging.Warn("Scan aborted after %d of %d files: %v", len(videos), len(candidates), err)
		return nil, err
	}

	sort.Slice(videos, func(i, j int) bool {
		return strings.ToLower(videos[i].Title) < strings.ToLower(videos[j].Title)
	})

	metrics.ScanFilesFound.Set(float64(len(videos)))
	logging.Info("Scan complete: %d videos in %v", len(videos), time.Since(start))

	return videos, nil
}

// Roots returns the effective, deduplicated root set for this scan:
// the defaults unioned with the custom folders from the state store.
func (s *Scanner) Roots() []string {
	var roots []string
	seen := make(map[string]bool)

	add := func(dir string) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return
		}
		if !seen[abs] {
			seen[abs] = true
			roots = append(roots, abs)
		}
	}

	for _, dir := range s.defaultRoots {
		add(dir)
	}
	if s.folders != nil {
		for _, dir := range s.folders.CustomFolders() {
			add(dir)
		}
	}

	return roots
}

// collect lists the immediate children of every root and returns the
// deduplicated set of video files found. Subdirectories are not
// descended into; the flat listing is the library's scope boundary.
func (s *Scanner) collect() []candidate {
	var found []candidate
	seen := make(map[string]bool)

	for _, root := range s.Roots() {
		entries, err := os.ReadDir(root)
		if err != nil {
			// Missing default directories are expected, not errors.
			logging.Debug("Skipping unreadable root %s: %v", root, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !VideoExtensions[ext] {
				continue
			}

			fullPath := filepath.Join(root, entry.Name())
			if seen[fullPath] {
				continue
			}
			seen[fullPath] = true

			info, err := entry.Info()
			if err != nil {
				logging.Warn("Skipping unreadable file %s: %v", fullPath, err)
				continue
			}

			found = append(found, candidate{path: fullPath, info: info})
		}
	}

	return found
}

// probeAndBuild runs duration probes with bounded concurrency and turns
// candidates into catalog entries. A file that vanished since listing is
// skipped entirely; a file whose probe failed keeps a zero duration.
func (s *Scanner) probeAndBuild(ctx context.Context, candidates []candidate) []Video {
	results := make([]*Video, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.probeWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.buildEntry(ctx, candidates[i])
			}
		}()
	}

enqueue:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()

	videos := make([]Video, 0, len(candidates))
	for _, v := range results {
		if v != nil {
			videos = append(videos, *v)
		}
	}
	return videos
}

// buildEntry assembles one catalog entry, probing its duration. Returns
// nil when the file disappeared between listing and probing.
func (s *Scanner) buildEntry(ctx context.Context, c candidate) *Video {
	seconds := 0.0

	if s.prober != nil {
		probeStart := time.Now()
		dur, err := s.prober.Duration(ctx, c.path)
		if err != nil {
			if _, statErr := os.Stat(c.path); statErr != nil {
				// Deleted out from under us mid-scan; drop the entry.
				logging.Debug("File vanished during scan, skipping: %s", c.path)
				metrics.ProbesTotal.WithLabelValues("vanished").Inc()
				return nil
			}
			logging.Debug("Duration probe failed for %s: %v", c.path, err)
			metrics.ProbesTotal.WithLabelValues("error").Inc()
		} else {
			seconds = dur
			metrics.ProbesTotal.WithLabelValues("success").Inc()
		}
		metrics.ProbeDuration.Observe(time.Since(probeStart).Seconds())
	}

	filename := c.info.Name()
	ext := strings.ToLower(filepath.Ext(filename))

	return &Video{
		ID:              VideoID(c.path),
		Title:           DisplayTitle(filename),
		Filename:        filename,
		Extension:       ext,
		Path:            c.path,
		Size:            c.info.Size(),
		SizeHuman:       FormatFileSize(c.info.Size()),
		UploadDate:      c.info.ModTime(),
		DurationSeconds: int(seconds),
		Duration:        FormatDuration(seconds),
	}
}
