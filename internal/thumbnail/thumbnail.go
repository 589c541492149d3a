// Package thumbnail produces and caches JPEG still frames for videos.
//
// Thumbnails are keyed by the video's stable id, so the cache survives
// rescans and restarts; a cached file is never invalidated while the
// underlying video exists. Frames come from a sidecar poster image when
// one sits next to the video, otherwise from ffmpeg at a fixed offset.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"localtube/internal/logging"
	"localtube/internal/metrics"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrUnavailable indicates no thumbnail can be produced for this video
// (corrupt file, audio-only stream, unsupported codec). It is an
// expected outcome, reported to clients as not-found.
var ErrUnavailable = errors.New("thumbnail unavailable")

const (
	thumbWidth  = 320
	thumbHeight = 180
	jpegQuality = 80

	// Frames are grabbed at a fixed one-second offset rather than a
	// percentage: percentage seeking needs a reliable duration, which
	// may be unavailable for exactly the files that need a retry.
	frameOffset = "00:00:01"

	extractTimeout = 30 * time.Second
)

// sidecarExtensions are poster image extensions probed next to the
// video file, in preference order.
var sidecarExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Generator creates and caches video thumbnails. Generation is
// serialized per video id, so concurrent requests for one cold id
// extract a single frame while other ids generate in parallel.
type Generator struct {
	cacheDir string
	group    singleflight.Group
}

// NewGenerator creates a Generator writing to cacheDir.
func NewGenerator(cacheDir string) *Generator {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("Failed to create thumbnail cache dir %s: %v", cacheDir, err)
	}
	return &Generator{cacheDir: cacheDir}
}

// CachePath returns the cache file location for a video id.
func (g *Generator) CachePath(id string) string {
	return filepath.Join(g.cacheDir, id+".jpg")
}

// Get returns the JPEG thumbnail for a video, generating and caching it
// on first request. Generation failure returns ErrUnavailable.
func (g *Generator) Get(ctx context.Context, id, videoPath string) ([]byte, error) {
	cachePath := g.CachePath(id)

	if data, err := os.ReadFile(cachePath); err == nil {
		logging.Debug("Thumbnail cache hit: %s", id)
		metrics.ThumbnailsTotal.WithLabelValues("cache_hit").Inc()
		return data, nil
	}

	data, err, _ := g.group.Do(id, func() (interface{}, error) {
		// Another request may have generated it while we queued.
		if data, err := os.ReadFile(cachePath); err == nil {
			metrics.ThumbnailsTotal.WithLabelValues("cache_hit").Inc()
			return data, nil
		}
		return g.generate(ctx, videoPath, cachePath)
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

// generate builds the thumbnail for one video and writes it to the
// cache. Callers hold the per-id singleflight slot.
func (g *Generator) generate(ctx context.Context, videoPath, cachePath string) ([]byte, error) {
	start := time.Now()
	img, outcome, err := g.sourceImage(ctx, videoPath)
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("failed").Inc()
		logging.Debug("Thumbnail generation failed for %s: %v", videoPath, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := os.WriteFile(cachePath, buf.Bytes(), 0o644); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
	}

	metrics.ThumbnailsTotal.WithLabelValues(outcome).Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Thumbnail generated for %s in %v", videoPath, time.Since(start))

	return buf.Bytes(), nil
}

// Remove deletes the cached thumbnail for an id, if any. Used when the
// underlying video is deleted.
func (g *Generator) Remove(id string) {
	if err := os.Remove(g.CachePath(id)); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove thumbnail for %s: %v", id, err)
	}
}

// sourceImage produces the raw frame for a video: a sidecar poster if
// one exists, otherwise an extracted frame.
func (g *Generator) sourceImage(ctx context.Context, videoPath string) (image.Image, string, error) {
	if img, ok := g.sidecarPoster(videoPath); ok {
		return img, "sidecar", nil
	}

	img, err := g.extractFrame(ctx, videoPath)
	if err != nil {
		return nil, "", err
	}
	return img, "generated", nil
}

// sidecarPoster looks for a poster image next to the video file
// (same name, image extension) and decodes it if present.
func (g *Generator) sidecarPoster(videoPath string) (image.Image, bool) {
	stem := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))

	for _, ext := range sidecarExtensions {
		posterPath := stem + ext
		if _, err := os.Stat(posterPath); err != nil {
			continue
		}

		img, err := imaging.Open(posterPath, imaging.AutoOrientation(true))
		if err != nil {
			logging.Debug("Failed to decode sidecar poster %s: %v", posterPath, err)
			continue
		}
		logging.Debug("Using sidecar poster: %s", posterPath)
		return img, true
	}

	return nil, false
}

// extractFrame asks ffmpeg for one frame at the fixed offset, retrying
// from the start of the file for clips shorter than the offset.
func (g *Generator) extractFrame(ctx context.Context, videoPath string) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	stdout, err := runFFmpeg(ctx, videoPath, frameOffset)
	if err != nil {
		logging.Debug("Frame extraction at %s failed for %s: %v, retrying from start", frameOffset, videoPath, err)
		stdout, err = runFFmpeg(ctx, videoPath, "")
		if err != nil {
			return nil, err
		}
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", videoPath)
	}

	img, _, err := image.Decode(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func runFFmpeg(ctx context.Context, videoPath, offset string) (*bytes.Buffer, error) {
	args := []string{"-i", videoPath}
	if offset != "" {
		args = append(args, "-ss", offset)
	}
	args = append(args,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	return &stdout, nil
}
