package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Sentinel errors for streaming operations.
var (
	// ErrClientGone indicates that the client disconnected before the
	// stream completed. Detected via the request context being canceled.
	ErrClientGone = errors.New("client disconnected")
)

// defaultChunkSize is the unit of work for the copy loop. The context is
// checked and the response flushed once per chunk, so this bounds how
// long a canceled stream keeps its file handle open.
const defaultChunkSize = 256 * 1024

// copyContext copies src to dst in chunks, checking ctx between chunks
// and flushing dst when it supports it. It returns the number of bytes
// written and ErrClientGone when the copy was cut short by the client
// going away.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	flusher, _ := dst.(http.Flusher)
	buf := make([]byte, defaultChunkSize)

	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ErrClientGone
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			written += int64(nw)
			if writeErr != nil {
				// A failed write mid-stream almost always means the
				// client hung up; the handler treats it as routine.
				if ctx.Err() != nil {
					return written, ErrClientGone
				}
				return written, writeErr
			}
			if nw < nr {
				return written, io.ErrShortWrite
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
