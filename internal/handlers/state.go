package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"localtube/internal/logging"
	"localtube/internal/state"

	"github.com/gorilla/mux"
)

// GetState returns the full persisted state document.
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.state.Snapshot())
}

// SaveHistory stores the resume position for a video.
func (h *Handlers) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID   string  `json:"videoId"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		writeJSONError(w, "videoId is required", http.StatusBadRequest)
		return
	}
	if req.Timestamp < 0 {
		req.Timestamp = 0
	}

	if err := h.state.SetHistory(req.VideoID, req.Timestamp); err != nil {
		logging.Error("Failed to save history for %s: %v", req.VideoID, err)
		writeJSONError(w, "failed to save history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// AddFolder registers a custom scan root and triggers a rescan so its
// videos appear without a manual refresh.
func (h *Handlers) AddFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Folder == "" {
		writeJSONError(w, "folder is required", http.StatusBadRequest)
		return
	}

	dir, err := filepath.Abs(req.Folder)
	if err != nil {
		writeJSONError(w, "invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		writeJSONError(w, "directory does not exist", http.StatusBadRequest)
		return
	}

	if err := h.state.AddFolder(dir); err != nil {
		if errors.Is(err, state.ErrDuplicateFolder) {
			writeJSONError(w, "folder already added", http.StatusBadRequest)
			return
		}
		logging.Error("Failed to add folder %s: %v", dir, err)
		writeJSONError(w, "failed to add folder", http.StatusInternalServerError)
		return
	}

	count, err := h.catalog.Refresh(r.Context())
	if err != nil {
		logging.Warn("Rescan after adding folder failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

// ToggleLike flips the liked flag on a video and returns the new value.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, ok := h.catalog.Get(id); !ok {
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}

	liked, err := h.state.ToggleLike(id)
	if err != nil {
		logging.Error("Failed to toggle like for %s: %v", id, err)
		writeJSONError(w, "failed to save like", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"success": true,
		"liked":   liked,
	})
}

// ListPlaylists returns all playlists with their video ids.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.state.Playlists())
}

// AddToPlaylist appends a video to the named playlist, creating it on
// first use. Re-adding a video the playlist already holds is a no-op.
func (h *Handlers) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		writeJSONError(w, "videoId is required", http.StatusBadRequest)
		return
	}

	if _, ok := h.catalog.Get(req.VideoID); !ok {
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}

	if err := h.state.AppendToPlaylist(name, req.VideoID); err != nil {
		logging.Error("Failed to update playlist %s: %v", name, err)
		writeJSONError(w, "failed to update playlist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// DeletePlaylist removes a playlist by name.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.state.RemovePlaylist(name); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			writeJSONError(w, "playlist not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to delete playlist %s: %v", name, err)
		writeJSONError(w, "failed to delete playlist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

// DeleteVideo removes a video file from disk along with its cached
// thumbnail and every state reference, then rescans.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, ok := h.catalog.Get(id)
	if !ok {
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}

	if err := os.Remove(video.Path); err != nil && !os.IsNotExist(err) {
		logging.Error("Failed to delete %s: %v", video.Path, err)
		writeJSONError(w, "failed to delete video file", http.StatusInternalServerError)
		return
	}

	h.thumbs.Remove(id)

	if err := h.state.RemoveVideo(id); err != nil {
		logging.Warn("Failed to purge state for deleted video %s: %v", id, err)
	}

	if _, err := h.catalog.Refresh(r.Context()); err != nil {
		logging.Warn("Rescan after delete failed: %v", err)
	}

	logging.Info("Deleted video %s (%s)", id, video.Filename)
	writeJSON(w, map[string]string{"message": "Video deleted successfully"})
}
