package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestConfigInitCreatesSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "clipforge", "config.toml")
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, deadSocket, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to")
	requireContains(t, out, "CLIPFORGE_LLM_API_KEY")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing [paths] section: %q", string(data))
	}

	// The generated sample must load cleanly with defaults applied.
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("load sample config: %v", err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "config.toml")
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, deadSocket, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}

	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, deadSocket, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, deadSocket, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateWithDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"config", "validate"}, deadSocket, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path:")
	requireContains(t, out, "defaults were used")
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowAndPath(t *testing.T) {
	env := setupCLITestEnv(t)
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"config", "show"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.StagingDir)

	out, _, err = runCLI(t, []string{"config", "path"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)
}

func TestConfigValidateRejectsBadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	badPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(badPath, []byte("[clips]\nmin_seconds = 30.0\nmax_seconds = 10.0\n"), 0o644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	_, _, err := runCLI(t, []string{"queue", "list"}, deadSocket, badPath)
	if err == nil || !strings.Contains(err.Error(), "clips.max_seconds") {
		t.Fatalf("expected clip bounds error, got %v", err)
	}
}
