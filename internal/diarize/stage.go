package diarize

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
	"clipforge/internal/queue"
	"clipforge/internal/services"
	"clipforge/internal/stage"
	"clipforge/internal/transcribe"
)

// Diarizer attributes transcript segments to speakers. When diarization is
// disabled every segment keeps the default speaker so downstream stages can
// rely on the label being present.
type Diarizer struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	service *Service
}

// NewDiarizer constructs the diarization stage handler using default dependencies.
func NewDiarizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Diarizer {
	return NewDiarizerWithDependencies(cfg, store, logger, NewService(cfg.Diarization))
}

// NewDiarizerWithDependencies allows injecting collaborators (used in tests).
func NewDiarizerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, service *Service) *Diarizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "diarizer"))
	}
	if service == nil {
		service = NewService(cfg.Diarization)
	}
	return &Diarizer{cfg: cfg, store: store, logger: stageLogger, service: service}
}

func (d *Diarizer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Diarizing", "Preparing speaker analysis")

	if strings.TrimSpace(item.TranscriptJSON) == "" {
		return services.Wrap(services.ErrValidation, "diarize", "validate inputs",
			"No transcript present; rerun transcription", nil)
	}
	if d.cfg.Diarization.Enabled {
		audio := strings.TrimSpace(item.AudioFile)
		if audio == "" {
			return services.Wrap(services.ErrValidation, "diarize", "validate inputs",
				"No extracted audio present; rerun probing", nil)
		}
		if _, err := os.Stat(audio); err != nil {
			return services.Wrap(services.ErrValidation, "diarize", "validate inputs",
				"Extracted audio is not readable; rerun probing", err)
		}
	}
	return nil
}

func (d *Diarizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	var transcript transcribe.Transcript
	if err := stage.ParseArtifact("diarize", "transcript", item.TranscriptJSON, &transcript); err != nil {
		return err
	}

	var turns []Turn
	if d.cfg.Diarization.Enabled {
		var err error
		turns, err = d.service.Diarize(ctx, item.AudioFile, filepath.Dir(item.AudioFile))
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "diarize", "run diarization", "Speaker diarization failed", err)
		}
	} else {
		logger.Info("diarization disabled, assigning default speaker")
	}

	AssignSpeakers(&transcript, turns)
	analysis := Diarization{
		Enabled:  d.cfg.Diarization.Enabled,
		Turns:    turns,
		Speakers: Summarize(turns),
	}
	if len(analysis.Speakers) == 0 {
		analysis.Speakers = []SpeakerSummary{{Speaker: DefaultSpeaker, TurnCount: 0, SpeakingSeconds: 0}}
	}

	speakersJSON, err := stage.EncodeArtifact("diarize", "speaker analysis", analysis)
	if err != nil {
		return err
	}
	transcriptJSON, err := stage.EncodeArtifact("diarize", "transcript", transcript)
	if err != nil {
		return err
	}
	item.SpeakersJSON = speakersJSON
	item.TranscriptJSON = transcriptJSON

	item.SetProgressComplete("Diarizing", fmt.Sprintf("Attributed %d speaker(s)", len(analysis.Speakers)))
	logger.Info("diarization completed",
		logging.Bool("enabled", analysis.Enabled),
		logging.Int("turns", len(turns)),
		logging.Int("speakers", len(analysis.Speakers)),
	)
	return nil
}

// HealthCheck verifies the diarization binary resolves when enabled.
func (d *Diarizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "diarizer"
	if d.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if !d.cfg.Diarization.Enabled {
		return stage.Healthy(name)
	}
	binary := strings.TrimSpace(d.cfg.Diarization.Binary)
	if binary == "" {
		return stage.Unhealthy(name, "diarization binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("diarization binary %q not found", binary))
	}
	return stage.Healthy(name)
}
