package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/diarize"
	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/staging"
)

// Exporter moves rendered clips from staging into the library, writes the
// manifest, and optionally joins the clips into a single reel.
type Exporter struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	runner   ffmpeg.Runner
	notifier notifications.Service
}

// NewExporter constructs the export stage handler using default dependencies.
func NewExporter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Exporter {
	return NewExporterWithDependencies(cfg, store, logger, ffmpeg.Run, notifications.NewService(cfg))
}

// NewExporterWithDependencies allows injecting collaborators (used in tests).
func NewExporterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner ffmpeg.Runner, notifier notifications.Service) *Exporter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "exporter"))
	}
	if runner == nil {
		runner = ffmpeg.Run
	}
	return &Exporter{cfg: cfg, store: store, logger: stageLogger, runner: runner, notifier: notifier}
}

func (e *Exporter) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Exporting", "Preparing library export")

	if strings.TrimSpace(item.ClipsJSON) == "" {
		return services.Wrap(services.ErrValidation, "export", "validate inputs",
			"No rendered clips present; rerun rendering", nil)
	}
	if strings.TrimSpace(e.cfg.Paths.LibraryDir) == "" {
		return services.Wrap(services.ErrConfiguration, "export", "validate inputs",
			"Library directory not configured; set paths.library_dir in your config.toml", nil)
	}
	return nil
}

func (e *Exporter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	var rendered render.Result
	if err := stage.ParseArtifact("export", "clips", item.ClipsJSON, &rendered); err != nil {
		return err
	}
	if len(rendered.Clips) == 0 {
		return services.Wrap(services.ErrValidation, "export", "validate inputs",
			"Render produced no clips; rerun rendering", nil)
	}

	destDir, err := allocateLibraryDir(e.cfg.Paths.LibraryDir, item.Title)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "ensure library dir",
			"Failed to create library directory", err)
	}

	manifest := Manifest{
		Title:      item.Title,
		SourcePath: item.SourcePath,
		ExportedAt: time.Now().UTC(),
		Clips:      make([]ManifestClip, 0, len(rendered.Clips)),
	}
	if strings.TrimSpace(item.SpeakersJSON) != "" {
		var diarization diarize.Diarization
		if err := stage.ParseArtifact("export", "speakers", item.SpeakersJSON, &diarization); err == nil {
			manifest.Speakers = diarization.Speakers
		}
	}

	for i, clip := range rendered.Clips {
		e.updateProgress(ctx, item,
			fmt.Sprintf("Exporting clip %d/%d", i+1, len(rendered.Clips)),
			float64(i)/float64(len(rendered.Clips))*90)

		entry := ManifestClip{
			Index:   clip.Index,
			Title:   clip.Title,
			Summary: clip.Summary,
			Start:   clip.Start,
			End:     clip.End,
			Speaker: clip.Speaker,
		}
		if entry.Video, err = moveIntoDir(clip.VideoPath, destDir); err != nil {
			return services.Wrap(services.ErrTransient, "export", "move clip",
				"Failed to move clip into library", err)
		}
		if clip.SubtitlePath != "" {
			if entry.Subtitle, err = moveIntoDir(clip.SubtitlePath, destDir); err != nil {
				return services.Wrap(services.ErrTransient, "export", "move subtitles",
					"Failed to move subtitles into library", err)
			}
		}
		if clip.ThumbnailPath != "" {
			if entry.Thumbnail, err = moveIntoDir(clip.ThumbnailPath, destDir); err != nil {
				return services.Wrap(services.ErrTransient, "export", "move thumbnail",
					"Failed to move thumbnail into library", err)
			}
		}
		manifest.Clips = append(manifest.Clips, entry)
	}

	if e.cfg.Clips.BuildReel && len(manifest.Clips) > 1 {
		e.updateProgress(ctx, item, "Building reel", 90)
		reelName, err := e.buildReel(ctx, destDir, manifest.Clips)
		if err != nil {
			// The individual clips already landed; a reel failure is not
			// worth failing the item over.
			logger.Warn("reel assembly failed", logging.Error(err))
		} else {
			manifest.Reel = reelName
		}
	}

	if err := writeManifest(destDir, manifest); err != nil {
		return services.Wrap(services.ErrTransient, "export", "write manifest",
			"Failed to write export manifest", err)
	}

	item.FinalDir = destDir
	if err := staging.RemoveItemDir(e.cfg.Paths.StagingDir, item.ID, item.Title); err != nil {
		logger.Warn("failed to remove staging directory", logging.Error(err))
	}

	item.SetProgressComplete("Exporting", fmt.Sprintf("Exported to library: %s", filepath.Base(destDir)))
	logger.Info("export completed",
		logging.String("final_dir", destDir),
		logging.Int("clips", len(manifest.Clips)),
		logging.Bool("reel", manifest.Reel != ""),
	)

	if e.notifier != nil {
		if err := e.notifier.NotifyExportCompleted(ctx, item.Title, destDir, len(manifest.Clips)); err != nil {
			logger.Warn("export notification failed", logging.Error(err))
		}
	}
	return nil
}

// buildReel concatenates the exported clips without re-encoding and returns
// the reel's file name within destDir.
func (e *Exporter) buildReel(ctx context.Context, destDir string, clips []ManifestClip) (string, error) {
	listPath := filepath.Join(destDir, "reel-inputs.txt")
	var b strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&b, "file '%s'\n", concatEscape(filepath.Join(destDir, clip.Video)))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	const reelName = "reel.mp4"
	if err := ffmpeg.Concat(ctx, e.runner, e.cfg.FFmpegBinary(), listPath, filepath.Join(destDir, reelName)); err != nil {
		return "", err
	}
	return reelName, nil
}

// HealthCheck verifies the library destination is configured and, when reel
// assembly is enabled, that ffmpeg resolves.
func (e *Exporter) HealthCheck(ctx context.Context) stage.Health {
	const name = "exporter"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(e.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	if e.cfg.Clips.BuildReel {
		if _, err := exec.LookPath(e.cfg.FFmpegBinary()); err != nil {
			return stage.Unhealthy(name, "ffmpeg binary not found")
		}
	}
	return stage.Healthy(name)
}

// allocateLibraryDir picks a fresh directory for the item under the library
// root, suffixing a counter when the natural name is taken.
func allocateLibraryDir(libraryDir, title string) (string, error) {
	name := strings.TrimSpace(fileutil.SanitizeFileName(strings.TrimSpace(title)))
	if name == "" {
		name = "untitled"
	}
	const maxAttempts = 10000
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := filepath.Join(libraryDir, name)
		if attempt > 1 {
			candidate = filepath.Join(libraryDir, fmt.Sprintf("%s (%d)", name, attempt))
		}
		if _, err := os.Stat(candidate); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return "", err
			}
			if err := os.MkdirAll(candidate, 0o755); err != nil {
				return "", err
			}
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted library directory slots for %q in %s", name, libraryDir)
}

// moveIntoDir moves src into destDir, falling back to a verified copy when
// the rename crosses filesystems. Returns the file name within destDir.
func moveIntoDir(src, destDir string) (string, error) {
	name := filepath.Base(src)
	target := filepath.Join(destDir, name)
	if err := os.Rename(src, target); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if copyErr := fileutil.CopyFileVerified(src, target); copyErr != nil {
				return "", copyErr
			}
			if removeErr := os.Remove(src); removeErr != nil {
				return "", removeErr
			}
			return name, nil
		}
		return "", err
	}
	return name, nil
}

// concatEscape escapes a path for the concat demuxer's single-quoted syntax.
func concatEscape(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func (e *Exporter) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, e.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := e.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist export progress", logging.Error(err))
		return
	}
	*item = copy
}
