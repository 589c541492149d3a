package library

import "time"

// Video is one discovered video file with its display metadata.
// Entries are built fresh on every scan and never mutated afterwards;
// per-user fields (resume position, liked) live in the state store keyed
// by ID and are joined at query time.
type Video struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Filename        string    `json:"filename"`
	Extension       string    `json:"extension"`
	Path            string    `json:"path"`
	Size            int64     `json:"size"`
	SizeHuman       string    `json:"sizeHuman"`
	UploadDate      time.Time `json:"uploadDate"`
	DurationSeconds int       `json:"durationSeconds"`
	Duration        string    `json:"duration"`
}

// VideoExtensions maps supported video file extensions to true.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".mov":  true,
}

// MimeTypes maps video file extensions to their MIME types.
var MimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
}

// MimeType returns the MIME type for a video file extension.
// Unknown extensions fall back to video/mp4, which browsers will
// generally attempt to play.
func MimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "video/mp4"
}
