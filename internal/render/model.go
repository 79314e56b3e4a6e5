package render

import (
	"fmt"
	"strings"

	"clipforge/internal/fileutil"
)

// RenderedClip records one clip produced in staging, with paths to every
// artifact that export later moves into the library.
type RenderedClip struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	Summary       string  `json:"summary,omitempty"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Speaker       string  `json:"speaker,omitempty"`
	VideoPath     string  `json:"video_path"`
	SubtitlePath  string  `json:"subtitle_path,omitempty"`
	ThumbnailPath string  `json:"thumbnail_path,omitempty"`
}

// Duration returns the clip length in seconds.
func (c RenderedClip) Duration() float64 {
	return c.End - c.Start
}

// Result is the render output persisted on the queue item.
type Result struct {
	Clips []RenderedClip `json:"clips"`
}

// maxStemLength keeps generated filenames well under filesystem limits even
// after the extension and any numbering the library side adds.
const maxStemLength = 80

// ClipFileStem builds the extensionless filename for a clip's artifacts.
// Index is zero-based; the stem numbers from 01 so a directory listing shows
// clips in timeline order.
func ClipFileStem(index int, title string) string {
	base := fileutil.SanitizeFileName(strings.TrimSpace(title))
	base = strings.TrimSpace(base)
	if base == "" {
		base = "clip"
	}
	if len(base) > maxStemLength {
		base = strings.TrimSpace(base[:maxStemLength])
	}
	return fmt.Sprintf("%02d-%s", index+1, base)
}
