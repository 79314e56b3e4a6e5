package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeASR()
	c.normalizeDiarization()
	c.normalizeLLM()
	c.normalizeClips()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReviewDir) == "" {
		c.Paths.ReviewDir = defaultReviewDir
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeASR() {
	c.ASR.Binary = strings.TrimSpace(c.ASR.Binary)
	if c.ASR.Binary == "" {
		c.ASR.Binary = defaultASRBinary
	}
	c.ASR.Model = strings.TrimSpace(c.ASR.Model)
	if c.ASR.Model == "" {
		c.ASR.Model = defaultASRModel
	}
	c.ASR.Device = strings.ToLower(strings.TrimSpace(c.ASR.Device))
	if c.ASR.Device == "" {
		c.ASR.Device = defaultASRDevice
	}
	c.ASR.Language = strings.ToLower(strings.TrimSpace(c.ASR.Language))
	hotwords := make([]string, 0, len(c.ASR.Hotwords))
	for _, word := range c.ASR.Hotwords {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			hotwords = append(hotwords, trimmed)
		}
	}
	c.ASR.Hotwords = hotwords
}

func (c *Config) normalizeDiarization() {
	c.Diarization.Binary = strings.TrimSpace(c.Diarization.Binary)
	if c.Diarization.Binary == "" {
		c.Diarization.Binary = defaultDiarizeBinary
	}
	c.Diarization.Model = strings.TrimSpace(c.Diarization.Model)
	if c.Diarization.Model == "" {
		c.Diarization.Model = defaultDiarizeModel
	}
	c.Diarization.Device = strings.ToLower(strings.TrimSpace(c.Diarization.Device))
	if c.Diarization.Device == "" {
		c.Diarization.Device = defaultDiarizeDevice
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.PromptStyle = strings.ToLower(strings.TrimSpace(c.LLM.PromptStyle))
	if c.LLM.PromptStyle == "" {
		c.LLM.PromptStyle = defaultLLMPromptStyle
	}
}

func (c *Config) normalizeClips() {
	c.Clips.Quality = strings.ToLower(strings.TrimSpace(c.Clips.Quality))
	if c.Clips.Quality == "" {
		c.Clips.Quality = defaultClipQuality
	}
	c.Clips.VideoCodec = strings.TrimSpace(c.Clips.VideoCodec)
	if c.Clips.VideoCodec == "" {
		c.Clips.VideoCodec = defaultVideoCodec
	}
	if c.Clips.MinSeconds <= 0 {
		c.Clips.MinSeconds = defaultClipMinSeconds
	}
	if c.Clips.MaxSeconds <= 0 {
		c.Clips.MaxSeconds = defaultClipMaxSeconds
	}
	if c.Clips.MaxClips <= 0 {
		c.Clips.MaxClips = defaultMaxClips
	}
}

func (c *Config) normalizeWatch() error {
	c.Watch.Dir = strings.TrimSpace(c.Watch.Dir)
	if c.Watch.Dir != "" {
		var err error
		if c.Watch.Dir, err = expandPath(c.Watch.Dir); err != nil {
			return fmt.Errorf("watch.dir: %w", err)
		}
	}
	if c.Watch.SettleSeconds <= 0 {
		c.Watch.SettleSeconds = defaultWatchSettleSecs
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
