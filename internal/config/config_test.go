package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "clipforge", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "clips") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Diarization.Enabled {
		t.Fatal("expected diarization disabled by default")
	}
	if cfg.LLM.PromptStyle != "highlight" {
		t.Fatalf("unexpected default prompt style: %q", cfg.LLM.PromptStyle)
	}
	if cfg.Clips.Quality != "medium" {
		t.Fatalf("unexpected default quality: %q", cfg.Clips.Quality)
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LibraryDir, cfg.Paths.LogDir, cfg.Paths.ReviewDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clipforge.toml")

	type payload struct {
		ASR struct {
			Model    string   `toml:"model"`
			Language string   `toml:"language"`
			Hotwords []string `toml:"hotwords"`
		} `toml:"asr"`
		Clips struct {
			MinSeconds float64 `toml:"min_seconds"`
			MaxSeconds float64 `toml:"max_seconds"`
			Quality    string  `toml:"quality"`
		} `toml:"clips"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.ASR.Model = "base.en"
	custom.ASR.Language = "EN"
	custom.ASR.Hotwords = []string{" ClipForge ", ""}
	custom.Clips.MinSeconds = 5
	custom.Clips.MaxSeconds = 45
	custom.Clips.Quality = "HIGH"
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.ASR.Model != "base.en" {
		t.Fatalf("expected ASR model from file, got %q", cfg.ASR.Model)
	}
	if cfg.ASR.Language != "en" {
		t.Fatalf("expected language lowered, got %q", cfg.ASR.Language)
	}
	if len(cfg.ASR.Hotwords) != 1 || cfg.ASR.Hotwords[0] != "ClipForge" {
		t.Fatalf("expected hotwords trimmed, got %v", cfg.ASR.Hotwords)
	}
	if cfg.Clips.Quality != "high" {
		t.Fatalf("expected quality lowered, got %q", cfg.Clips.Quality)
	}
	if cfg.Clips.MinSeconds != 5 || cfg.Clips.MaxSeconds != 45 {
		t.Fatalf("unexpected clip bounds: %v-%v", cfg.Clips.MinSeconds, cfg.Clips.MaxSeconds)
	}
	if cfg.Workflow.HeartbeatInterval != 20 {
		t.Fatalf("expected heartbeat interval 20, got %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("expected heartbeat timeout 200, got %d", cfg.Workflow.HeartbeatTimeout)
	}
}

func TestEnvVarOverridesConfigFileForSecrets(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clipforge.toml")

	type payload struct {
		LLM struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"llm"`
		Notifications struct {
			NtfyTopic string `toml:"ntfy_topic"`
		} `toml:"notifications"`
	}
	custom := payload{}
	custom.LLM.APIKey = "file-key"
	custom.LLM.BaseURL = "https://example.com/v1/chat/completions"
	custom.Notifications.NtfyTopic = "file-topic"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("CLIPFORGE_LLM_API_KEY", "env-key")
	t.Setenv("CLIPFORGE_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "https://example.com/v1/chat/completions" {
		t.Errorf("expected base URL from file, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[clips]") {
		t.Fatalf("sample config missing clips section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StagingDir, "clipforge") {
		t.Fatalf("expected staging dir to contain clipforge, got %q", cfg.Paths.StagingDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Clips.MinSeconds = 60
	cfg.Clips.MaxSeconds = 30
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted clip bounds")
	}

	cfg = config.Default()
	cfg.Clips.Quality = "ultra"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown quality")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for heartbeat interval")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout <= interval")
	}

	cfg = config.Default()
	cfg.LLM.PromptStyle = "speaker"
	cfg.Diarization.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for speaker prompt style without diarization")
	}

	cfg = config.Default()
	cfg.Watch.Enabled = true
	cfg.Watch.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for watch without dir")
	}
}
