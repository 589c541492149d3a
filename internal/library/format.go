package library

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// FormatDuration renders a duration in seconds as M:SS or H:MM:SS.
// Zero, negative, and NaN inputs all render as "0:00".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "0:00"
	}

	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatFileSize renders a byte count as a human-readable string scaled
// to B, KB, MB or GB with one decimal place (bytes are shown whole).
func FormatFileSize(bytes int64) string {
	const unit = 1024

	switch {
	case bytes < unit:
		return fmt.Sprintf("%d B", bytes)
	case bytes < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(bytes)/unit)
	case bytes < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(unit*unit*unit))
	}
}

var (
	bracketedRe  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	separatorsRe = regexp.MustCompile(`[._-]+`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// DisplayTitle derives a human-friendly title from a video filename.
// The extension is dropped, bracketed release tags are removed, runs of
// dots, dashes and underscores become single spaces, and each remaining
// word is capitalized. If nothing survives the cleanup the raw filename
// (without extension) is returned so every video has a visible title.
func DisplayTitle(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = filename
	}

	title := bracketedRe.ReplaceAllString(base, " ")
	title = separatorsRe.ReplaceAllString(title, " ")
	title = spacesRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if title == "" {
		return base
	}

	words := strings.Fields(title)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
