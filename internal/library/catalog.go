package library

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Catalog holds the current scan snapshot behind an atomic pointer.
// Readers take lock-free snapshots and never observe a partially-built
// catalog; a refresh builds the full replacement before swapping it in.
type Catalog struct {
	scanner  *Scanner
	snapshot atomic.Pointer[snapshot]
	refresh  singleflight.Group
	ready    atomic.Bool
}

type snapshot struct {
	videos []Video
	byID   map[string]Video
}

// NewCatalog creates an empty catalog that refreshes via scanner.
func NewCatalog(scanner *Scanner) *Catalog {
	c := &Catalog{scanner: scanner}
	c.snapshot.Store(&snapshot{byID: make(map[string]Video)})
	return c
}

// All returns the current snapshot's entries. The returned slice is
// shared and must not be modified by callers.
func (c *Catalog) All() []Video {
	return c.snapshot.Load().videos
}

// Get looks up a video by its stable id.
func (c *Catalog) Get(id string) (Video, bool) {
	v, ok := c.snapshot.Load().byID[id]
	return v, ok
}

// Len returns the number of videos in the current snapshot.
func (c *Catalog) Len() int {
	return len(c.snapshot.Load().videos)
}

// Ready reports whether at least one scan has completed. An empty
// library still counts as ready once scanned.
func (c *Catalog) Ready() bool {
	return c.ready.Load()
}

// Refresh runs a scan and atomically replaces the snapshot, returning
// the new entry count. Concurrent refreshes are coalesced: a second
// caller arriving while a scan is in flight waits for and receives that
// scan's result instead of starting a parallel one.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	count, err, _ := c.refresh.Do("scan", func() (interface{}, error) {
		videos, err := c.scanner.Scan(ctx)
		if err != nil {
			// Keep the previous snapshot intact on scan failure.
			return c.Len(), err
		}
		c.Replace(videos)
		return len(videos), nil
	})
	return count.(int), err
}

// Replace installs videos as the new catalog snapshot.
func (c *Catalog) Replace(videos []Video) {
	byID := make(map[string]Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	c.snapshot.Store(&snapshot{videos: videos, byID: byID})
	c.ready.Store(true)
}
