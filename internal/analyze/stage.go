package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/probe"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/transcribe"
)

// Analyzer selects which parts of the source become clips.
type Analyzer struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	selector *Selector
	notifier notifications.Service
}

// NewAnalyzer constructs the analysis stage handler using default dependencies.
func NewAnalyzer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Analyzer {
	return NewAnalyzerWithDependencies(cfg, store, logger, NewSelector(cfg, logger), notifications.NewService(cfg))
}

// NewAnalyzerWithDependencies allows injecting collaborators (used in tests).
func NewAnalyzerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, selector *Selector, notifier notifications.Service) *Analyzer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "analyzer"))
	}
	if selector == nil {
		selector = NewSelector(cfg, stageLogger)
	}
	return &Analyzer{cfg: cfg, store: store, logger: stageLogger, selector: selector, notifier: notifier}
}

func (a *Analyzer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Analyzing", "Preparing clip analysis")
	if strings.TrimSpace(item.TranscriptJSON) == "" {
		return services.Wrap(services.ErrValidation, "analyze", "validate inputs",
			"No transcript present; rerun transcription", nil)
	}
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	var transcript transcribe.Transcript
	if err := stage.ParseArtifact("analyze", "transcript", item.TranscriptJSON, &transcript); err != nil {
		return err
	}
	duration := transcript.Duration()
	if strings.TrimSpace(item.MediaInfoJSON) != "" {
		var info probe.MediaInfo
		if err := stage.ParseArtifact("analyze", "media info", item.MediaInfoJSON, &info); err == nil && info.DurationSeconds > 0 {
			duration = info.DurationSeconds
		}
	}

	a.updateProgress(ctx, item, "Selecting clips", 20)
	analysis, err := a.selector.Select(ctx, transcript, duration)
	if err != nil {
		return services.Wrap(services.ErrTransient, "analyze", "select clips", "Clip selection failed", err)
	}
	if len(analysis.Clips) == 0 {
		logger.Warn("no clips satisfied the selection bounds, routing to review",
			logging.String(logging.FieldEventType, "analyze_no_clips"),
			logging.String(logging.FieldErrorHint, "relax clips.min_seconds/max_seconds or pick a longer source"),
			logging.String(logging.FieldImpact, "item requires manual review"),
		)
		item.SetReview("No clips satisfied the configured selection bounds")
		return nil
	}

	encoded, err := stage.EncodeArtifact("analyze", "analysis", analysis)
	if err != nil {
		return err
	}
	item.AnalysisJSON = encoded

	item.SetProgressComplete("Analyzing", fmt.Sprintf("Selected %d clip(s)", len(analysis.Clips)))
	logger.Info("analysis completed",
		logging.String("source", analysis.Source),
		logging.String("prompt_style", analysis.PromptStyle),
		logging.Int("clips", len(analysis.Clips)),
	)

	if a.notifier != nil {
		if err := a.notifier.NotifyClipsSelected(ctx, item.Title, len(analysis.Clips)); err != nil {
			logger.Warn("clip selection notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck reports ready even without an API key since the heuristic
// selector requires nothing external.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if a.selector == nil {
		return stage.Unhealthy(name, "selector unavailable")
	}
	return stage.Healthy(name)
}

func (a *Analyzer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, a.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := a.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist analysis progress", logging.Error(err))
		return
	}
	*item = copy
}
