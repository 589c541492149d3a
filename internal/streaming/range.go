package streaming

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"localtube/internal/logging"
	"localtube/internal/metrics"
)

// ErrRangeNotSatisfiable indicates a syntactically valid Range header
// whose start position lies at or beyond the end of the file.
var ErrRangeNotSatisfiable = errors.New("requested range not satisfiable")

// ByteRange is one parsed, inclusive byte span.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a single-range header of the form "bytes=start-end"
// (end optional) against a file of the given size.
//
// A nil range with a nil error means "serve the full file": that covers
// both an absent header and anything unparseable, matching permissive
// client expectations. The only hard failure is ErrRangeNotSatisfiable,
// returned when start >= size. Multi-range requests are out of scope and
// fall into the unparseable bucket.
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil, nil
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, nil
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}

	if start >= size {
		return nil, ErrRangeNotSatisfiable
	}

	end := size - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil, nil
		}
		if end >= size {
			end = size - 1
		}
		if end < start {
			return nil, nil
		}
	}

	return &ByteRange{Start: start, End: end}, nil
}

// ServeFile streams a video file to the client, honoring a single Range
// header. The file is stat'd at request time, so a size change since the
// last scan is served correctly; a file that vanished entirely surfaces
// as a server error to the caller.
func ServeFile(w http.ResponseWriter, r *http.Request, path, contentType string) error {
	info, err := os.Stat(path)
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	fileSize := info.Size()

	byteRange, err := ParseRange(r.Header.Get("Range"), fileSize)
	if err != nil {
		// The one Range error that produces a response: 416, no body
		// beyond the diagnostic, and the file is never opened.
		metrics.StreamsTotal.WithLabelValues("not_satisfiable").Inc()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		http.Error(w, "Requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close video file %s: %v", path, err)
		}
	}()

	metrics.StreamsInFlight.Inc()
	defer metrics.StreamsInFlight.Dec()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	var src io.Reader = file
	if byteRange != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.Start, byteRange.End, fileSize))
		w.Header().Set("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
		w.WriteHeader(http.StatusPartialContent)
		src = io.NewSectionReader(file, byteRange.Start, byteRange.Length())
		metrics.StreamsTotal.WithLabelValues("partial").Inc()
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(fileSize, 10))
		w.WriteHeader(http.StatusOK)
		metrics.StreamsTotal.WithLabelValues("full").Inc()
	}

	written, err := copyContext(r.Context(), w, src)
	metrics.StreamBytesSent.Add(float64(written))

	if err != nil {
		if errors.Is(err, ErrClientGone) {
			// Routine: players seek by aborting range requests.
			metrics.StreamClientDisconnects.Inc()
			logging.Debug("Client disconnected after %d bytes of %s", written, path)
			return nil
		}
		return fmt.Errorf("stream copy failed for %s: %w", path, err)
	}

	return nil
}
