package diarize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/config"
)

// Service runs the configured diarization binary against extracted audio.
type Service struct {
	cfg    config.Diarization
	runner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a diarization service with the given configuration.
func NewService(cfg config.Diarization) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.runner = runner
}

// Diarize runs the diarization binary and parses the RTTM it writes.
func (s *Service) Diarize(ctx context.Context, audioPath, outputDir string) ([]Turn, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("diarize: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("diarize: ensure output dir: %w", err)
	}

	rttmPath := filepath.Join(outputDir, "speakers.rttm")
	args := s.buildArgs(audioPath, rttmPath)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return nil, fmt.Errorf("diarization: %w", err)
	}
	turns, err := ParseRTTM(rttmPath)
	if err != nil {
		return nil, fmt.Errorf("diarization output: %w", err)
	}
	return turns, nil
}

func (s *Service) buildArgs(audioPath, rttmPath string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--output", rttmPath,
	}
	if s.cfg.MinSpeakers > 0 {
		args = append(args, "--min-speakers", strconv.Itoa(s.cfg.MinSpeakers))
	}
	if s.cfg.MaxSpeakers > 0 {
		args = append(args, "--max-speakers", strconv.Itoa(s.cfg.MaxSpeakers))
	}
	if device := strings.TrimSpace(s.cfg.Device); device != "" {
		args = append(args, "--device", device)
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
