package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
)

// Transcriber converts extracted audio into a timed transcript.
type Transcriber struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	service  *Service
	notifier notifications.Service
}

// NewTranscriber constructs the transcription stage handler using default dependencies.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	return NewTranscriberWithDependencies(cfg, store, logger, NewService(cfg.ASR), notifications.NewService(cfg))
}

// NewTranscriberWithDependencies allows injecting collaborators (used in tests).
func NewTranscriberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, service *Service, notifier notifications.Service) *Transcriber {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "transcriber"))
	}
	if service == nil {
		service = NewService(cfg.ASR)
	}
	return &Transcriber{cfg: cfg, store: store, logger: stageLogger, service: service, notifier: notifier}
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.InitProgress("Transcribing", "Preparing transcription")

	audio := strings.TrimSpace(item.AudioFile)
	if audio == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "validate inputs",
			"No extracted audio present; rerun probing", nil)
	}
	if _, err := os.Stat(audio); err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "validate inputs",
			"Extracted audio is not readable; rerun probing", err)
	}
	logger.Info("transcription prepared",
		logging.String("audio_file", audio),
		logging.String("asr_model", t.service.Model()),
	)
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	t.updateProgress(ctx, item, fmt.Sprintf("Running ASR model %s", t.service.Model()), 10)
	transcript, err := t.service.Transcribe(ctx, item.AudioFile, filepath.Dir(item.AudioFile))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "run asr", "Speech recognition failed", err)
	}

	if transcript.Empty() {
		logger.Warn("transcript contains no speech, routing to review",
			logging.String(logging.FieldEventType, "transcribe_empty"),
			logging.String(logging.FieldErrorHint, "verify the source actually contains speech"),
			logging.String(logging.FieldImpact, "item requires manual review"),
		)
		item.SetReview("Transcript is empty; source may contain no speech")
		return nil
	}

	encoded, err := stage.EncodeArtifact("transcribe", "transcript", transcript)
	if err != nil {
		return err
	}
	item.TranscriptJSON = encoded

	item.SetProgressComplete("Transcribing", fmt.Sprintf("Transcribed %d segment(s)", len(transcript.Segments)))
	logger.Info("transcription completed",
		logging.Int("segments", len(transcript.Segments)),
		logging.Int("words", transcript.WordCount()),
		logging.String("language", transcript.Language),
	)

	if t.notifier != nil {
		if err := t.notifier.NotifyTranscriptionCompleted(ctx, item.Title); err != nil {
			logger.Warn("transcription notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the ASR binary resolves.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	binary := strings.TrimSpace(t.cfg.ASR.Binary)
	if binary == "" {
		return stage.Unhealthy(name, "asr binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("asr binary %q not found", binary))
	}
	return stage.Healthy(name)
}

func (t *Transcriber) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, t.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := t.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist transcription progress", logging.Error(err))
		return
	}
	*item = copy
}
