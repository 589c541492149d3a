package library

import (
	"crypto/sha256"
	"encoding/hex"
)

// idLength is the number of hex characters kept from the path hash.
// 16 hex chars (64 bits) keeps collisions negligible for any realistic
// library size while staying short enough for URLs and cache filenames.
const idLength = 16

// VideoID derives the stable identifier for a video from its absolute
// path. It is a pure string transform: it never inspects the filesystem,
// so the same path always yields the same id across rescans, restarts,
// and scan-order permutations. The result is lowercase hex, safe as a
// URL path segment and as a filename stem.
func VideoID(absolutePath string) string {
	sum := sha256.Sum256([]byte(absolutePath))
	return hex.EncodeToString(sum[:])[:idLength]
}
