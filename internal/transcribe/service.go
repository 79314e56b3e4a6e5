package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
)

// Service runs the configured ASR binary against extracted audio.
type Service struct {
	cfg    config.ASR
	runner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an ASR service with the given configuration.
func NewService(cfg config.ASR) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.runner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe runs the ASR binary on the audio file and loads the resulting
// transcript JSON from outputDir.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Transcript{}, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(audioPath, outputDir)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return Transcript{}, fmt.Errorf("asr: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	transcript, err := LoadJSON(jsonPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("asr output: %w", err)
	}
	return transcript, nil
}

// buildArgs constructs the ASR command line. The flags follow the whisper CLI
// convention; word timestamps are always requested because clip boundary
// refinement depends on them.
func (s *Service) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--word_timestamps", "True",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" && !strings.EqualFold(lang, "auto") {
		args = append(args, "--language", lang)
	}
	if device := strings.TrimSpace(s.cfg.Device); device != "" {
		args = append(args, "--device", device)
	}
	if len(s.cfg.Hotwords) > 0 {
		args = append(args, "--initial_prompt", strings.Join(s.cfg.Hotwords, ", "))
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.runner != nil {
		return s.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
