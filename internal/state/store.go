// Package state persists the user's library state (custom folders, watch
// history, likes, playlists) as a single JSON document on disk.
//
// All mutation methods write through to disk immediately; last write wins.
// The catalog never writes here, and scans never modify this store, which
// is what keeps user state intact across catalog rebuilds: everything is
// keyed by the stable path-derived video id.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"localtube/internal/logging"
	"localtube/internal/metrics"
)

// Sentinel errors for state operations.
var (
	// ErrDuplicateFolder indicates the folder is already configured.
	ErrDuplicateFolder = errors.New("folder already configured")

	// ErrNotFound indicates the named playlist does not exist.
	ErrNotFound = errors.New("not found")
)

// Document is the on-disk shape of the persisted state.
type Document struct {
	CustomFolders []string            `json:"customFolders"`
	History       map[string]float64  `json:"history"`
	LikedVideos   []string            `json:"likedVideos"`
	Playlists     map[string][]string `json:"playlists"`
}

// Store is the durable user-state store backed by one JSON file.
type Store struct {
	path string

	mu  sync.RWMutex
	doc Document
}

// Open loads the state document at path, creating it with empty defaults
// if it does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		logging.Info("State file %s not found, creating with defaults", path)
	default:
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	s.normalize()

	if os.IsNotExist(err) {
		if err := s.save(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// normalize fills nil maps/slices so the zero document is usable and
// marshals as [] / {} instead of null.
func (s *Store) normalize() {
	if s.doc.CustomFolders == nil {
		s.doc.CustomFolders = []string{}
	}
	if s.doc.History == nil {
		s.doc.History = map[string]float64{}
	}
	if s.doc.LikedVideos == nil {
		s.doc.LikedVideos = []string{}
	}
	if s.doc.Playlists == nil {
		s.doc.Playlists = map[string][]string{}
	}
}

// save writes the document to disk. Callers must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		metrics.StateWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		metrics.StateWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		metrics.StateWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write state file: %w", err)
	}

	metrics.StateWritesTotal.WithLabelValues("success").Inc()
	return nil
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := Document{
		CustomFolders: append([]string{}, s.doc.CustomFolders...),
		History:       make(map[string]float64, len(s.doc.History)),
		LikedVideos:   append([]string{}, s.doc.LikedVideos...),
		Playlists:     make(map[string][]string, len(s.doc.Playlists)),
	}
	for id, t := range s.doc.History {
		doc.History[id] = t
	}
	for name, ids := range s.doc.Playlists {
		doc.Playlists[name] = append([]string{}, ids...)
	}
	return doc
}

// CustomFolders returns the configured custom scan roots.
func (s *Store) CustomFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.doc.CustomFolders...)
}

// ResumeTime returns the saved resume position for a video, 0 if none.
func (s *Store) ResumeTime(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.History[id]
}

// IsLiked reports whether a video is liked.
func (s *Store) IsLiked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, liked := range s.doc.LikedVideos {
		if liked == id {
			return true
		}
	}
	return false
}

// SetHistory stores the resume position for a video and flushes to disk.
func (s *Store) SetHistory(id string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.History[id] = seconds
	return s.save()
}

// AddFolder appends a custom scan root. The caller validates that the
// directory exists; the store only rejects duplicates.
func (s *Store) AddFolder(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.doc.CustomFolders {
		if existing == dir {
			return ErrDuplicateFolder
		}
	}
	s.doc.CustomFolders = append(s.doc.CustomFolders, dir)
	return s.save()
}

// ToggleLike flips the liked flag for a video and returns the new value.
func (s *Store) ToggleLike(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, liked := range s.doc.LikedVideos {
		if liked == id {
			s.doc.LikedVideos = append(s.doc.LikedVideos[:i], s.doc.LikedVideos[i+1:]...)
			return false, s.save()
		}
	}
	s.doc.LikedVideos = append(s.doc.LikedVideos, id)
	return true, s.save()
}

// Playlists returns a copy of the playlist mapping.
func (s *Store) Playlists() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlists := make(map[string][]string, len(s.doc.Playlists))
	for name, ids := range s.doc.Playlists {
		playlists[name] = append([]string{}, ids...)
	}
	return playlists
}

// AppendToPlaylist adds a video to a playlist, creating the playlist if
// needed. Each playlist is an ordered set: adding an id that is already
// present is a no-op.
func (s *Store) AppendToPlaylist(name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Playlists[name] {
		if existing == id {
			return nil
		}
	}
	s.doc.Playlists[name] = append(s.doc.Playlists[name], id)
	return s.save()
}

// RemovePlaylist deletes a playlist by name.
func (s *Store) RemovePlaylist(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Playlists[name]; !ok {
		return ErrNotFound
	}
	delete(s.doc.Playlists, name)
	return s.save()
}

// RemoveVideo purges every reference to a video id: history entry, like,
// and playlist memberships. Used when the underlying file is deleted.
func (s *Store) RemoveVideo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.doc.History, id)

	for i, liked := range s.doc.LikedVideos {
		if liked == id {
			s.doc.LikedVideos = append(s.doc.LikedVideos[:i], s.doc.LikedVideos[i+1:]...)
			break
		}
	}

	for name, ids := range s.doc.Playlists {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		s.doc.Playlists[name] = kept
	}

	return s.save()
}
