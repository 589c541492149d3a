package handlers

import (
	"net/http"

	"localtube/internal/library"
	"localtube/internal/logging"
	"localtube/internal/metrics"
	"localtube/internal/streaming"

	"github.com/gorilla/mux"
)

// StreamVideo serves a video file with byte-range support. Unknown ids
// return 404 without touching the filesystem.
func (h *Handlers) StreamVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	video, ok := h.catalog.Get(id)
	if !ok {
		metrics.StreamsTotal.WithLabelValues("not_found").Inc()
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}

	if err := streaming.ServeFile(w, r, video.Path, library.MimeType(video.Extension)); err != nil {
		// For mid-stream failures the headers are already sent and the
		// superfluous WriteHeader is a no-op; pre-stream errors (stat,
		// open) get a proper 500.
		logging.Error("Stream failed for %s: %v", id, err)
		http.Error(w, "failed to stream video", http.StatusInternalServerError)
	}
}
