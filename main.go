package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localtube/internal/handlers"
	"localtube/internal/library"
	"localtube/internal/logging"
	"localtube/internal/metrics"
	"localtube/internal/middleware"
	"localtube/internal/startup"
	"localtube/internal/state"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Load persisted user state
	stateStart := time.Now()
	store, err := state.Open(config.StatePath)
	if err != nil {
		startup.LogFatal("Failed to open state store: %v", err)
	}
	startup.LogStateInit(config.StatePath, time.Since(stateStart))

	// Initialize scanner and catalog
	scanner := library.NewScanner(
		library.DefaultRoots(config.MediaDir),
		store,
		library.NewFFprobeProber(),
		config.ProbeWorkers,
	)
	catalog := library.NewCatalog(scanner)
	startup.LogScannerInit(scanner.Roots(), config.ProbeWorkers)

	// Run the initial scan in the background so the server accepts
	// requests immediately; readiness flips once it completes.
	if config.ScanOnStart {
		go func() {
			count, err := catalog.Refresh(context.Background())
			if err != nil {
				logging.Error("Initial scan failed: %v", err)
				return
			}
			logging.Info("Initial scan complete: %d videos", count)
		}()
	} else {
		catalog.Replace(nil)
	}

	// Watch scan roots for changes
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if config.WatchEnabled {
		go library.NewWatcher(catalog).Run(watchCtx)
	}

	// Initialize handlers
	h := handlers.New(catalog, store, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Create server. WriteTimeout stays 0: streams run as long as the
	// client keeps reading.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics on a separate listener so the scrape endpoint is never
	// exposed on the application port.
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, stopWatch)

	// Start server
	startup.LogServerStarted(config.Port, config.MetricsPort, config.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.Livez).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/refresh", h.RefreshLibrary).Methods("POST")
	api.HandleFunc("/stream/{id}", h.StreamVideo).Methods("GET")
	api.HandleFunc("/thumbnail/{id}", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/db", h.GetState).Methods("GET")
	api.HandleFunc("/history", h.SaveHistory).Methods("POST")
	api.HandleFunc("/folders", h.AddFolder).Methods("POST")
	api.HandleFunc("/likes/{id}", h.ToggleLike).Methods("POST")
	api.HandleFunc("/playlists", h.ListPlaylists).Methods("GET")
	api.HandleFunc("/playlists/{name}", h.AddToPlaylist).Methods("POST")
	api.HandleFunc("/playlists/{name}", h.DeletePlaylist).Methods("DELETE")
	api.HandleFunc("/video/{id}", h.DeleteVideo).Methods("DELETE")

	// Static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, stopWatch context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping filesystem watcher")
	stopWatch()
	startup.LogShutdownStepComplete("Watcher stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
