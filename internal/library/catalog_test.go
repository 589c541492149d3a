package library

import (
	"context"
	"sync"
	"testing"
)

// =============================================================================
// Catalog Snapshot Tests
// =============================================================================

func TestCatalogEmptyBeforeScan(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(nil)

	if catalog.Len() != 0 {
		t.Errorf("Expected empty catalog, got %d entries", catalog.Len())
	}
	if catalog.Ready() {
		t.Error("Catalog should not be ready before the first scan")
	}
	if _, ok := catalog.Get("nope"); ok {
		t.Error("Get on empty catalog should miss")
	}
}

func TestCatalogReplaceAndGet(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(nil)
	videos := []Video{
		{ID: "aaaa", Title: "Alpha"},
		{ID: "bbbb", Title: "Beta"},
	}

	catalog.Replace(videos)

	if !catalog.Ready() {
		t.Error("Catalog should be ready after Replace")
	}
	if catalog.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", catalog.Len())
	}

	v, ok := catalog.Get("bbbb")
	if !ok || v.Title != "Beta" {
		t.Errorf("Get(bbbb) = %+v, %v", v, ok)
	}
	if _, ok := catalog.Get("cccc"); ok {
		t.Error("Get on unknown id should miss")
	}
}

func TestCatalogRefreshSwapsSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "first.mp4")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)
	catalog := NewCatalog(scanner)

	count, err := catalog.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if count != 1 || catalog.Len() != 1 {
		t.Fatalf("Expected 1 entry after refresh, got count=%d len=%d", count, catalog.Len())
	}

	writeVideo(t, dir, "second.mp4")

	count, err = catalog.Refresh(context.Background())
	if err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	if count != 2 || catalog.Len() != 2 {
		t.Errorf("Expected 2 entries after rescan, got count=%d len=%d", count, catalog.Len())
	}
}

func TestCatalogConcurrentRefresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "a.mp4")
	writeVideo(t, dir, "b.mp4")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)
	catalog := NewCatalog(scanner)

	const goroutines = 8
	var wg sync.WaitGroup
	counts := make([]int, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			count, err := catalog.Refresh(context.Background())
			if err != nil {
				t.Errorf("Refresh %d failed: %v", i, err)
				return
			}
			counts[i] = count
		}(i)
	}
	wg.Wait()

	for i, count := range counts {
		if count != 2 {
			t.Errorf("Refresh %d returned count=%d, want 2", i, count)
		}
	}
	if catalog.Len() != 2 {
		t.Errorf("Catalog has %d entries, want 2", catalog.Len())
	}
}

// cancelMidScanProber cancels a context partway through a scan, after a
// configured number of probe calls.
type cancelMidScanProber struct {
	mu     sync.Mutex
	calls  int
	after  int
	cancel context.CancelFunc
}

func (p *cancelMidScanProber) Duration(_ context.Context, _ string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.cancel != nil && p.calls == p.after {
		p.cancel()
	}
	return 42, nil
}

func (p *cancelMidScanProber) arm(after int, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = 0
	p.after = after
	p.cancel = cancel
}

func TestCatalogCanceledRefreshKeepsSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4"} {
		writeVideo(t, dir, name)
	}

	prober := &cancelMidScanProber{}
	scanner := NewScanner([]string{dir}, nil, prober, 1)
	catalog := NewCatalog(scanner)

	count, err := catalog.Refresh(context.Background())
	if err != nil || count != 4 {
		t.Fatalf("Initial Refresh = %d, %v, want 4 entries", count, err)
	}

	// Abort the second refresh after two of the four probes. The
	// truncated result must not replace the complete snapshot.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prober.arm(2, cancel)

	count, err = catalog.Refresh(ctx)
	if err == nil {
		t.Fatal("Refresh under a canceled context should report an error")
	}
	if count != 4 {
		t.Errorf("Aborted Refresh reported count=%d, want previous 4", count)
	}
	if catalog.Len() != 4 {
		t.Errorf("Catalog holds %d entries after aborted refresh, want 4", catalog.Len())
	}
}

func TestCatalogReadersDuringRefresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVideo(t, dir, "a.mp4")

	scanner := NewScanner([]string{dir}, nil, &fakeProber{}, 2)
	catalog := NewCatalog(scanner)

	if _, err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = catalog.Refresh(context.Background())
		}
	}()

	// Readers must always observe a complete snapshot.
	for i := 0; i < 1000; i++ {
		videos := catalog.All()
		for _, v := range videos {
			if v.ID == "" {
				t.Fatal("Observed incomplete catalog entry")
			}
		}
	}
	<-done
}
