package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/analyze"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/staging"
	"clipforge/internal/subtitles"
	"clipforge/internal/transcribe"
)

// Renderer cuts the selected clips out of the source file, writing per-clip
// video, subtitles, and thumbnails into the item's staging directory.
type Renderer struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	runner ffmpeg.Runner
}

// NewRenderer constructs the render stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	return NewRendererWithDependencies(cfg, store, logger, ffmpeg.Run)
}

// NewRendererWithDependencies allows injecting the command runner (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, runner ffmpeg.Runner) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "renderer"))
	}
	if runner == nil {
		runner = ffmpeg.Run
	}
	return &Renderer{cfg: cfg, store: store, logger: stageLogger, runner: runner}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Rendering", "Preparing clip rendering")

	if strings.TrimSpace(item.AnalysisJSON) == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"No clip analysis present; rerun analysis", nil)
	}
	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, "render", "validate inputs",
			"Source file is not readable", err)
	}
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	var analysis analyze.Analysis
	if err := stage.ParseArtifact("render", "analysis", item.AnalysisJSON, &analysis); err != nil {
		return err
	}
	if len(analysis.Clips) == 0 {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"Analysis holds no clips; rerun analysis", nil)
	}

	var cues []subtitles.Cue
	if r.cfg.Subtitles.Enabled && strings.TrimSpace(item.TranscriptJSON) != "" {
		var transcript transcribe.Transcript
		if err := stage.ParseArtifact("render", "transcript", item.TranscriptJSON, &transcript); err != nil {
			return err
		}
		cues = cuesFromTranscript(transcript, r.cfg.Subtitles.IncludeSpeakers)
	}

	workDir, err := staging.EnsureItemDir(r.cfg.Paths.StagingDir, item.ID, item.Title)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "ensure staging dir",
			"Failed to create staging directory", err)
	}
	clipsDir := filepath.Join(workDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "ensure clips dir",
			"Failed to create clips directory", err)
	}

	settings := ffmpeg.SettingsForQuality(r.cfg.Clips.Quality)
	result := Result{Clips: make([]RenderedClip, 0, len(analysis.Clips))}

	for i, clip := range analysis.Clips {
		r.updateProgress(ctx, item,
			fmt.Sprintf("Rendering clip %d/%d", i+1, len(analysis.Clips)),
			float64(i)/float64(len(analysis.Clips))*100)

		rendered, err := r.renderClip(ctx, item.SourcePath, clipsDir, i, clip, cues, settings)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "render", "cut clip",
				fmt.Sprintf("Rendering clip %d failed", i+1), err)
		}
		result.Clips = append(result.Clips, rendered)
	}

	encoded, err := stage.EncodeArtifact("render", "clips", result)
	if err != nil {
		return err
	}
	item.ClipsJSON = encoded

	item.SetProgressComplete("Rendering", fmt.Sprintf("Rendered %d clip(s)", len(result.Clips)))
	logger.Info("render completed",
		logging.Int("clips", len(result.Clips)),
		logging.String("quality", r.cfg.Clips.Quality),
		logging.Bool("subtitles", r.cfg.Subtitles.Enabled),
	)
	return nil
}

// renderClip produces every artifact for a single clip. The subtitle file is
// written before the cut so burn-in can reference it.
func (r *Renderer) renderClip(ctx context.Context, source, clipsDir string, index int, clip analyze.Clip, cues []subtitles.Cue, settings ffmpeg.QualitySettings) (RenderedClip, error) {
	stem := ClipFileStem(index, clip.Title)
	rendered := RenderedClip{
		Index:     index,
		Title:     clip.Title,
		Summary:   clip.Summary,
		Start:     clip.Start,
		End:       clip.End,
		Speaker:   clip.Speaker,
		VideoPath: filepath.Join(clipsDir, stem+".mp4"),
	}

	if len(cues) > 0 {
		window := subtitles.Rebase(subtitles.Window(cues, clip.Start, clip.End), clip.Start, clip.Duration())
		if len(window) > 0 {
			subtitlePath := filepath.Join(clipsDir, stem+".srt")
			if err := os.WriteFile(subtitlePath, []byte(subtitles.Format(window)), 0o644); err != nil {
				return RenderedClip{}, fmt.Errorf("write subtitles: %w", err)
			}
			rendered.SubtitlePath = subtitlePath
		}
	}

	binary := r.cfg.FFmpegBinary()
	codec := r.cfg.Clips.VideoCodec
	if r.cfg.Subtitles.BurnIn && rendered.SubtitlePath != "" {
		if err := ffmpeg.CutClipBurn(ctx, r.runner, binary, source, clip.Start, clip.End, settings, codec, rendered.SubtitlePath, rendered.VideoPath); err != nil {
			return RenderedClip{}, err
		}
	} else {
		if err := ffmpeg.CutClip(ctx, r.runner, binary, source, clip.Start, clip.End, settings, codec, rendered.VideoPath); err != nil {
			return RenderedClip{}, err
		}
	}

	if r.cfg.Clips.Thumbnails {
		thumbnailPath := filepath.Join(clipsDir, stem+".jpg")
		// Midpoint rather than the first frame, which often lands on a cut
		// or fade.
		at := clip.Start + clip.Duration()/2
		if err := ffmpeg.Thumbnail(ctx, r.runner, binary, source, at, thumbnailPath); err != nil {
			return RenderedClip{}, err
		}
		rendered.ThumbnailPath = thumbnailPath
	}
	return rendered, nil
}

// HealthCheck verifies ffmpeg resolves and staging is configured.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "renderer"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if _, err := exec.LookPath(r.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, "ffmpeg binary not found")
	}
	return stage.Healthy(name)
}

func cuesFromTranscript(transcript transcribe.Transcript, includeSpeakers bool) []subtitles.Cue {
	cues := make([]subtitles.Cue, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		cue := subtitles.Cue{Start: seg.Start, End: seg.End, Text: text}
		if includeSpeakers {
			cue.Speaker = seg.Speaker
		}
		cues = append(cues, cue)
	}
	return cues
}

func (r *Renderer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, r.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := r.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist render progress", logging.Error(err))
		return
	}
	*item = copy
}
