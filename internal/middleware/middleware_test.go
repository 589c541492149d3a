package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// Log Field Sanitization Tests
// =============================================================================

func TestSanitizeLogField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain string", "normal-value", "normal-value"},
		{"Newline replaced", "line1\nline2", "line1 line2"},
		{"Carriage return replaced", "line1\r\nline2", "line1  line2"},
		{"Null byte stripped", "abc\x00def", "abcdef"},
		{"ANSI escape stripped", "abc\x1b[31mdef", "abc[31mdef"},
		{"Tab preserved", "a\tb", "a\tb"},
		{"Control chars stripped", "a\x01\x02b", "ab"},
		{"Unicode preserved", "vidéo – 動画", "vidéo – 動画"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.expected {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Skip Logic Tests
// =============================================================================

func TestShouldSkip(t *testing.T) {
	t.Parallel()

	config := DefaultLoggingConfig()
	config.LogHealthChecks = false

	tests := []struct {
		path string
		skip bool
	}{
		{"/api/videos", false},
		{"/api/stream/abc123", false},
		{"/health", true},
		{"/readyz", true},
		{"/static/app.js", true},
		{"/static/style.css", true},
		{"/favicon.ico", true},
	}

	for _, tt := range tests {
		if got := shouldSkip(tt.path, config); got != tt.skip {
			t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.skip)
		}
	}
}

func TestShouldSkipLogsHealthWhenEnabled(t *testing.T) {
	t.Parallel()

	config := DefaultLoggingConfig()
	if shouldSkip("/health", config) {
		t.Error("health checks should be logged when LogHealthChecks is true")
	}
}

// =============================================================================
// Client IP Extraction Tests
// =============================================================================

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		remote   string
		headers  map[string]string
		expected string
	}{
		{"Remote addr only", "10.0.0.5:51234", nil, "10.0.0.5"},
		{"X-Forwarded-For single", "10.0.0.5:51234", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"X-Forwarded-For chain", "10.0.0.5:51234", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"X-Real-IP", "10.0.0.5:51234", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := getClientIP(req); got != tt.expected {
				t.Errorf("getClientIP = %q, want %q", got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Metrics Path Normalization Tests
// =============================================================================

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected string
	}{
		{"/api/videos", "/api/videos"},
		{"/api/refresh", "/api/refresh"},
		{"/api/stream/a1b2c3d4e5f60718", "/api/stream/{id}"},
		{"/api/thumbnail/a1b2c3d4e5f60718", "/api/thumbnail/{id}"},
		{"/api/playlists/watch%20later", "/api/playlists/{id}"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

// =============================================================================
// Middleware Behavior Tests
// =============================================================================

func TestLoggerPassesThrough(t *testing.T) {
	t.Parallel()

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	}))

	req := httptest.NewRequest("GET", "/api/videos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "body" {
		t.Errorf("body = %q, want body", rec.Body.String())
	}
}

func TestResponseWriterTracksStatusAndBytes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError) // second call ignored
	n, err := rw.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = %d, %v", n, err)
	}

	if rw.statusCode != http.StatusAccepted {
		t.Errorf("statusCode = %d, want 202", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
}
