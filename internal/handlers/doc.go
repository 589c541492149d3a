// Package handlers implements the HTTP API: library listing and refresh,
// range streaming, thumbnails, and the persisted user state endpoints.
package handlers
