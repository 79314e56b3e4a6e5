package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"clipforge/internal/analyze"
	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/diarize"
	"clipforge/internal/export"
	"clipforge/internal/logging"
	"clipforge/internal/probe"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/staging"
	"clipforge/internal/transcribe"
	"clipforge/internal/workflow"
)

const staleStagingAge = 7 * 24 * time.Hour

func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	set := workflow.StageSet{
		Prober:      probe.NewProber(cfg, store, logger),
		Transcriber: transcribe.NewTranscriber(cfg, store, logger),
		Analyzer:    analyze.NewAnalyzer(cfg, store, logger),
		Renderer:    render.NewRenderer(cfg, store, logger),
		Exporter:    export.NewExporter(cfg, store, logger),
	}
	if cfg.Diarization.Enabled {
		set.Diarizer = diarize.NewDiarizer(cfg, store, logger)
	}
	return set
}

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return "clipforge.sock"
	}
	return filepath.Join(cfg.Paths.LogDir, "clipforge.sock")
}

// runStartupMaintenance performs housekeeping that should happen once per
// daemon start: report missing external binaries, recover items interrupted
// by a crash, and reclaim disk from stale staging and old logs.
func runStartupMaintenance(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger) {
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available || status.Optional {
			continue
		}
		logger.Warn("required dependency unavailable",
			logging.String("dependency", status.Name),
			logging.String("command", status.Command),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, "install the binary or adjust its path in the config"),
		)
	}

	if status := deps.CheckFFmpegVersion(ctx, cfg.FFmpegBinary()); !status.Available {
		logger.Warn("ffmpeg version check failed",
			logging.String("command", status.Command),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, "upgrade ffmpeg to a supported release"),
		)
	}

	if reset, err := store.ResetStuckProcessing(ctx); err != nil {
		logger.Warn("failed to reset interrupted items", logging.Error(err))
	} else if reset > 0 {
		logger.Info("reset interrupted items", logging.Int64("count", reset))
	}

	result := staging.CleanStale(cfg.Paths.StagingDir, staleStagingAge, logger)
	if len(result.Removed) > 0 {
		logger.Info("removed stale staging directories", logging.Int("count", len(result.Removed)))
	}

	if days := cfg.Logging.RetentionDays; days > 0 {
		logging.CleanupOldLogs(logger, days, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{"clipforge.log"},
		})
	}
}
