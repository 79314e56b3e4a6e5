package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clipforge/internal/diarize"
)

// manifestName is the metadata file written alongside exported clips.
const manifestName = "manifest.json"

// ManifestClip describes one exported clip. File fields are names relative to
// the manifest's directory so the folder can be relocated wholesale.
type ManifestClip struct {
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary,omitempty"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Speaker   string  `json:"speaker,omitempty"`
	Video     string  `json:"video"`
	Subtitle  string  `json:"subtitle,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Manifest is the per-item metadata exported next to the clips.
type Manifest struct {
	Title      string                   `json:"title"`
	SourcePath string                   `json:"source_path"`
	ExportedAt time.Time                `json:"exported_at"`
	Speakers   []diarize.SpeakerSummary `json:"speakers,omitempty"`
	Clips      []ManifestClip           `json:"clips"`
	Reel       string                   `json:"reel,omitempty"`
}

func writeManifest(dir string, manifest Manifest) error {
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
