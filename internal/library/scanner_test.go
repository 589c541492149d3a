package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// Test Fixtures
// =============================================================================

// fakeProber returns canned durations keyed by filename, with optional
// per-file errors.
type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	errs      map[string]error
	calls     int
}

func (p *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	name := filepath.Base(path)
	if err, ok := p.errs[name]; ok {
		return 0, err
	}
	if d, ok := p.durations[name]; ok {
		return d, nil
	}
	return 60, nil
}

type staticFolders []string

func (f staticFolders) CustomFolders() []string { return f }

func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// =============================================================================
// Scan Tests
// =============================================================================

func TestScanFindsVideos(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "beta.mp4")
	writeVideo(t, dir, "alpha.mkv")
	writeVideo(t, dir, "notes.txt")
	writeVideo(t, dir, ".hidden.mp4")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(videos))
	}

	// Sorted by title, case-insensitive
	if videos[0].Title != "Alpha" || videos[1].Title != "Beta" {
		t.Errorf("Expected titles [Alpha Beta], got [%s %s]", videos[0].Title, videos[1].Title)
	}
}

func TestScanDoesNotRecurse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeVideo(t, dir, "top.mp4")
	writeVideo(t, sub, "deep.mp4")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 1 || videos[0].Filename != "top.mp4" {
		t.Errorf("Expected only top-level video, got %+v", videos)
	}
}

func TestScanDedupesOverlappingRoots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "once.mp4")

	// Same directory as a default root and a custom folder.
	scanner := NewScanner([]string{dir}, staticFolders{dir}, &fakeProber{}, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 1 {
		t.Errorf("Expected 1 video from overlapping roots, got %d", len(videos))
	}
}

func TestScanSkipsMissingRoots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "real.mp4")

	scanner := NewScanner([]string{dir, filepath.Join(dir, "does-not-exist")}, nil, &fakeProber{}, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 1 {
		t.Errorf("Expected 1 video, got %d", len(videos))
	}
}

func TestScanProbeFailureKeepsEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "broken.mp4")

	prober := &fakeProber{errs: map[string]error{"broken.mp4": errors.New("probe exploded")}}
	scanner := NewScanner([]string{dir}, nil, prober, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 1 {
		t.Fatalf("Expected entry for unprobeable file, got %d videos", len(videos))
	}
	if videos[0].DurationSeconds != 0 || videos[0].Duration != "0:00" {
		t.Errorf("Expected zero duration, got %d / %q", videos[0].DurationSeconds, videos[0].Duration)
	}
}

// deletingProber removes the target file when asked to probe it,
// simulating a file deleted between listing and probing.
type deletingProber struct {
	target string
}

func (p *deletingProber) Duration(_ context.Context, path string) (float64, error) {
	if filepath.Base(path) == p.target {
		if err := os.Remove(path); err != nil {
			return 0, err
		}
		return 0, errors.New("no such file")
	}
	return 60, nil
}

func TestScanSkipsVanishedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "kept.mp4")
	writeVideo(t, dir, "gone.mp4")

	scanner := NewScanner([]string{dir}, nil, &deletingProber{target: "gone.mp4"}, 1)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(videos) != 1 || videos[0].Filename != "kept.mp4" {
		t.Errorf("Expected vanished file to be dropped, got %+v", videos)
	}
}

func TestScanEntryFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeVideo(t, dir, "My.Trip.2024.mp4")

	prober := &fakeProber{durations: map[string]float64{"My.Trip.2024.mp4": 3725}}
	scanner := NewScanner([]string{dir}, nil, prober, 2)

	videos, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(videos))
	}

	v := videos[0]
	if v.ID != VideoID(path) {
		t.Errorf("ID = %q, want %q", v.ID, VideoID(path))
	}
	if v.Title != "My Trip 2024" {
		t.Errorf("Title = %q, want %q", v.Title, "My Trip 2024")
	}
	if v.Extension != ".mp4" {
		t.Errorf("Extension = %q, want .mp4", v.Extension)
	}
	if v.Path != path {
		t.Errorf("Path = %q, want %q", v.Path, path)
	}
	if v.DurationSeconds != 3725 || v.Duration != "1:02:05" {
		t.Errorf("Duration = %d / %q, want 3725 / 1:02:05", v.DurationSeconds, v.Duration)
	}
	if v.Size == 0 || v.SizeHuman == "" {
		t.Errorf("Size fields not populated: %d / %q", v.Size, v.SizeHuman)
	}
	if v.UploadDate.IsZero() {
		t.Error("UploadDate not populated")
	}
}

func TestScanIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "one.mp4")
	writeVideo(t, dir, "two.webm")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)

	first, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	second, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Scan not idempotent: %d vs %d entries", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Entry %d id changed between scans: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

// =============================================================================
// Root Set Tests
// =============================================================================

func TestRootsDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scanner := NewScanner([]string{dir, dir}, staticFolders{dir}, nil, 1)

	roots := scanner.Roots()
	if len(roots) != 1 {
		t.Errorf("Expected 1 deduplicated root, got %d: %v", len(roots), roots)
	}
}

func TestRootsIncludesCustomFolders(t *testing.T) {
	t.Parallel()

	a := t.TempDir()
	b := t.TempDir()
	scanner := NewScanner([]string{a}, staticFolders{b}, nil, 1)

	roots := scanner.Roots()
	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d: %v", len(roots), roots)
	}
}
