package library

import (
	"math"
	"testing"
)

// =============================================================================
// Duration Formatting Tests
// =============================================================================

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"Zero", 0, "0:00"},
		{"Negative", -5, "0:00"},
		{"NaN", math.NaN(), "0:00"},
		{"Under a minute", 42, "0:42"},
		{"Exactly one minute", 60, "1:00"},
		{"Minutes and seconds", 65, "1:05"},
		{"Just under an hour", 3599, "59:59"},
		{"Exactly one hour", 3600, "1:00:00"},
		{"Hours minutes seconds", 3725, "1:02:05"},
		{"Fractional seconds truncated", 61.9, "1:01"},
		{"Long movie", 7384, "2:03:04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// File Size Formatting Tests
// =============================================================================

func TestFormatFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"Zero", 0, "0 B"},
		{"Under a KB", 1023, "1023 B"},
		{"Exactly one KB", 1024, "1.0 KB"},
		{"KB with fraction", 1536, "1.5 KB"},
		{"One MB", 1024 * 1024, "1.0 MB"},
		{"Typical video", 734003200, "700.0 MB"},
		{"One GB", 1024 * 1024 * 1024, "1.0 GB"},
		{"Several GB", 4831838208, "4.5 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatFileSize(tt.bytes); got != tt.expected {
				t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Display Title Tests
// =============================================================================

func TestDisplayTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"Simple name", "vacation.mp4", "Vacation"},
		{"Dots as separators", "my.summer.trip.mp4", "My Summer Trip"},
		{"Underscores and dashes", "home_movie-final.mkv", "Home Movie Final"},
		{"Release tags stripped", "Movie.Title.2024.[1080p].(x265).mkv", "Movie Title 2024"},
		{"Curly braces stripped", "clip {draft}.mov", "Clip"},
		{"Already clean", "Birthday Party.mp4", "Birthday Party"},
		{"Multiple spaces collapsed", "a   b.mp4", "A B"},
		{"Only tags falls back to base", "[1080p].mp4", "[1080p]"},
		{"Mixed case preserved after first letter", "theGreatEscape.mp4", "TheGreatEscape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayTitle(tt.filename); got != tt.expected {
				t.Errorf("DisplayTitle(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// MIME Type Tests
// =============================================================================

func TestMimeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext      string
		expected string
	}{
		{".mp4", "video/mp4"},
		{".webm", "video/webm"},
		{".mkv", "video/x-matroska"},
		{".avi", "video/x-msvideo"},
		{".mov", "video/quicktime"},
		{".flv", "video/mp4"},
		{"", "video/mp4"},
	}

	for _, tt := range tests {
		if got := MimeType(tt.ext); got != tt.expected {
			t.Errorf("MimeType(%q) = %q, want %q", tt.ext, got, tt.expected)
		}
	}
}
