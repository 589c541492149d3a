// Package library implements the video catalog: stable path-derived
// identifiers, the folder scanner, duration probing, and the swap-on-write
// catalog snapshot read by every query and streaming endpoint.
//
// The scanner looks at the immediate children of each configured root
// (default locations plus user-added folders) and keeps files whose
// extension is one of: mp4, mkv, webm, avi, mov. The same file reachable
// through two roots is counted once. A rescan replaces the whole catalog
// atomically; readers always see either the old or the new snapshot.
package library
