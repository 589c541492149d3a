package library

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober determines the duration of a media file in seconds.
// Probe failures are expected (corrupt files, missing tools) and are
// handled by the scanner as "duration unknown", never as a scan error.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// probeTimeout bounds a single ffprobe invocation. Probing is one
// external process per file, so a wedged probe must not stall a scan.
const probeTimeout = 15 * time.Second

// FFprobeProber shells out to ffprobe for container-level duration.
type FFprobeProber struct{}

// NewFFprobeProber returns a Prober backed by the ffprobe binary on PATH.
func NewFFprobeProber() *FFprobeProber {
	return &FFprobeProber{}
}

// Duration runs ffprobe against the file and parses the format duration.
func (p *FFprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	durStr := strings.TrimSpace(stdout.String())
	if durStr == "" || durStr == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	duration, err := strconv.ParseFloat(durStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe duration %q: %w", durStr, err)
	}
	return duration, nil
}
