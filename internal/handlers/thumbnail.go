package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"localtube/internal/logging"
	"localtube/internal/thumbnail"

	"github.com/gorilla/mux"
)

// GetThumbnail serves the cached JPEG thumbnail for a video, generating
// it on first request. Failures are reported as 404 so players fall back
// to their placeholder art.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, ok := h.catalog.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := h.thumbs.Get(r.Context(), id, video.Path)
	if err != nil {
		if !errors.Is(err, thumbnail.ErrUnavailable) {
			logging.Error("Thumbnail error for %s: %v", id, err)
		}
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write thumbnail response: %v", err)
	}
}
