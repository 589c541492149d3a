package handlers

import (
	"net/http"
	"runtime"
	"time"

	"localtube/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

var processStart = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	VideoCount int `json:"videoCount"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The service is
// ready once the first scan has populated the catalog; an empty library
// on a freshly started server reports starting with a 503 so orchestrators
// wait for the initial scan.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.catalog.Ready()

	response := HealthResponse{
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(processStart).Round(time.Second).String(),
		VideoCount:   h.catalog.Len(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// Livez is the liveness probe: the process is up and serving.
func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "alive")
}

// Readyz is the readiness probe: the initial scan has completed.
func (h *Handlers) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.catalog.Ready() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "starting"})
		return
	}
	writeJSONStatus(w, "ready")
}
