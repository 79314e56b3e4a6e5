package probe

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/staging"
)

// InspectFunc matches ffprobe.Inspect and allows probing to be faked in tests.
type InspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Prober inspects queued source files and extracts the audio track the
// speech stages consume.
type Prober struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	inspect InspectFunc
	runner  ffmpeg.Runner
}

// NewProber constructs the probe stage handler using default dependencies.
func NewProber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Prober {
	return NewProberWithDependencies(cfg, store, logger, ffprobe.Inspect, ffmpeg.Run)
}

// NewProberWithDependencies allows injecting collaborators (used in tests).
func NewProberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, inspect InspectFunc, runner ffmpeg.Runner) *Prober {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "prober"))
	}
	if inspect == nil {
		inspect = ffprobe.Inspect
	}
	if runner == nil {
		runner = ffmpeg.Run
	}
	return &Prober{cfg: cfg, store: store, logger: stageLogger, inspect: inspect, runner: runner}
}

func (p *Prober) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	item.InitProgress("Probing", "Inspecting source file")

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "probe", "validate inputs", "Queue item has no source path", nil)
	}
	if !SupportedExtension(filepath.Ext(source)) {
		return services.Wrap(
			services.ErrValidation, "probe", "validate inputs",
			"Unsupported container "+filepath.Ext(source)+"; supported: "+strings.Join(SupportedExtensions, " "),
			nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrNotFound, "probe", "validate inputs", "Source file is not readable", err)
	}
	logger.Info("probe prepared", logging.String("source_file", source))
	return nil
}

func (p *Prober) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	result, err := p.inspect(ctx, p.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "probe", "inspect", "ffprobe inspection failed", err)
	}
	info := FromProbe(result)
	encoded, err := stage.EncodeArtifact("probe", "media info", info)
	if err != nil {
		return err
	}
	item.MediaInfoJSON = encoded

	if info.VideoStreams == 0 {
		return services.Wrap(services.ErrValidation, "probe", "inspect", "Source has no video stream", nil)
	}
	if info.AudioStreams == 0 {
		logger.Warn("source has no audio stream, routing to review",
			logging.String("source_file", item.SourcePath),
			logging.String(logging.FieldEventType, "probe_no_audio"),
			logging.String(logging.FieldErrorHint, "remux the source with an audio track"),
			logging.String(logging.FieldImpact, "item requires manual review"),
		)
		item.SetReview("Source has no audio stream; transcription is impossible")
		return nil
	}
	if info.DurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "probe", "inspect", "Source reports no duration", nil)
	}

	p.updateProgress(ctx, item, "Extracting audio track", 40)

	workDir, err := staging.EnsureItemDir(p.cfg.Paths.StagingDir, item.ID, item.Title)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "probe", "ensure staging dir", "Failed to create staging directory", err)
	}
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := ffmpeg.ExtractAudio(ctx, p.runner, p.cfg.FFmpegBinary(), item.SourcePath, audioPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "probe", "extract audio", "Audio extraction failed", err)
	}
	item.AudioFile = audioPath

	item.SetProgressComplete("Probing", "Media inspected and audio extracted")
	logger.Info("probe completed",
		logging.String("audio_file", audioPath),
		logging.Float64("duration_seconds", info.DurationSeconds),
		logging.Int("audio_streams", info.AudioStreams),
	)
	return nil
}

// HealthCheck verifies the probe binaries resolve and staging is configured.
func (p *Prober) HealthCheck(ctx context.Context) stage.Health {
	const name = "prober"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if _, err := exec.LookPath(p.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, "ffprobe binary not found")
	}
	if _, err := exec.LookPath(p.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, "ffmpeg binary not found")
	}
	return stage.Healthy(name)
}

func (p *Prober) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, p.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := p.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist probe progress", logging.Error(err))
		return
	}
	*item = copy
}
