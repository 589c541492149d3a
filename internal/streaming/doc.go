// Package streaming serves video file bytes over HTTP, honoring
// single-range Range requests, and owns the stream lifecycle: every
// stream has its own file handle, copies run in chunks with the request
// context checked between chunks, and a client disconnect cancels the
// in-progress copy and releases the handle promptly.
package streaming
