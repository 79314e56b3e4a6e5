package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services/llm"
	"clipforge/internal/transcribe"
)

// ClipCompleter is the slice of the LLM client the selector needs.
type ClipCompleter interface {
	Configured() bool
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Selector chooses clips from a transcript, via the LLM when configured and
// the heuristic scorer otherwise.
type Selector struct {
	cfg    *config.Config
	client ClipCompleter
	logger *slog.Logger
}

// NewSelector builds a selector backed by the configured LLM client.
func NewSelector(cfg *config.Config, logger *slog.Logger) *Selector {
	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	return NewSelectorWithClient(cfg, logger, client)
}

// NewSelectorWithClient allows injecting the completion client (used in tests).
func NewSelectorWithClient(cfg *config.Config, logger *slog.Logger, client ClipCompleter) *Selector {
	return &Selector{cfg: cfg, client: client, logger: logger}
}

// Select returns the clip analysis for a transcript. durationSeconds bounds
// clip times when > 0.
func (s *Selector) Select(ctx context.Context, transcript transcribe.Transcript, durationSeconds float64) (Analysis, error) {
	logger := logging.WithContext(ctx, s.logger)
	style := s.cfg.LLM.PromptStyle
	bounds := Bounds{
		MinSeconds:      s.cfg.Clips.MinSeconds,
		MaxSeconds:      s.cfg.Clips.MaxSeconds,
		MaxClips:        s.cfg.Clips.MaxClips,
		DurationSeconds: durationSeconds,
	}

	if s.client == nil || !s.client.Configured() {
		logger.Info("llm not configured, using heuristic clip selection")
		return Analysis{
			PromptStyle: style,
			Source:      SourceHeuristic,
			Clips:       fallbackClips(style, transcript, bounds),
		}, nil
	}

	raw, err := s.client.CompleteJSON(ctx, systemPrompt, buildUserPrompt(style, transcript, bounds))
	if err != nil {
		return Analysis{}, fmt.Errorf("llm clip selection: %w", err)
	}
	var response llmClipResponse
	if err := llm.DecodeLLMJSON(raw, &response); err != nil {
		return Analysis{}, fmt.Errorf("llm clip selection: parse payload: %w", err)
	}

	clips := sanitizeClips(response.Clips, bounds)
	if len(clips) == 0 {
		// The model produced nothing usable; the heuristic keeps the
		// pipeline moving rather than failing the item.
		logger.Warn("llm returned no usable clips, falling back to heuristic",
			logging.String(logging.FieldEventType, "analyze_llm_empty"),
			logging.Int("raw_clips", len(response.Clips)),
		)
		return Analysis{
			PromptStyle: style,
			Source:      SourceHeuristic,
			Clips:       fallbackClips(style, transcript, bounds),
		}, nil
	}
	return Analysis{PromptStyle: style, Source: SourceLLM, Clips: clips}, nil
}

// fallbackClips picks the heuristic selection matching the prompt style.
// The speaker style groups passages per speaker; the others rate mixed
// windows.
func fallbackClips(style string, transcript transcribe.Transcript, bounds Bounds) []Clip {
	if style == "speaker" {
		return speakerClips(transcript, bounds)
	}
	return heuristicClips(transcript, bounds)
}
