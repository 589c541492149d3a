package handlers

import (
	"net/http"

	"localtube/internal/library"
	"localtube/internal/logging"
)

// VideoResponse is a catalog entry joined with the caller's state.
type VideoResponse struct {
	library.Video
	ResumeTime float64 `json:"resumeTime"`
	IsLiked    bool    `json:"isLiked"`
}

// ListVideos returns the current catalog, newest scan snapshot, with
// resume positions and like flags joined in. It never triggers a scan.
func (h *Handlers) ListVideos(w http.ResponseWriter, _ *http.Request) {
	videos := h.catalog.All()

	response := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		response = append(response, VideoResponse{
			Video:      v,
			ResumeTime: h.state.ResumeTime(v.ID),
			IsLiked:    h.state.IsLiked(v.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// RefreshLibrary rescans all roots and swaps in the new catalog.
// Concurrent refresh requests share a single scan.
func (h *Handlers) RefreshLibrary(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.Refresh(r.Context())
	if err != nil {
		logging.Error("Library refresh failed: %v", err)
		writeJSONError(w, "scan failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}
