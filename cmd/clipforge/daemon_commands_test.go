package main

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestStatusCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"status"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("status offline: %v", err)
	}
	requireContains(t, out, "not running")

	out, _, err = runCLI(t, []string{"status", "--json"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("status offline --json: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload["running"] != false {
		t.Fatalf("expected running=false, got %v", payload["running"])
	}
}

func TestStatusCommandOnline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status online: %v", err)
	}
	requireContains(t, out, "Daemon")
	requireContains(t, out, "Workflow")
	requireContains(t, out, "stopped")
	requireContains(t, out, "Queue DB")
	requireContains(t, out, "Stages")
	requireContains(t, out, "prober")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "FFmpeg")
}

func TestStatusCommandOnlineJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status online --json: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload["running"] != false {
		t.Fatalf("expected running=false before start, got %v", payload["running"])
	}
	if _, ok := payload["queue_db_path"]; !ok {
		t.Fatal("missing queue_db_path in status JSON")
	}
	pid, ok := payload["pid"].(float64)
	if !ok || pid <= 0 {
		t.Fatalf("expected positive pid, got %v", payload["pid"])
	}
}

func TestStartAndStopViaCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Daemon started")

	out, _, err = runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon stopped")
}

func TestRestartViaCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"restart"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	requireContains(t, out, "Daemon restarted")

	out, _, err = runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop after restart: %v", err)
	}
	requireContains(t, out, "Daemon stopped")
}

func TestStopCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"stop"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("stop offline: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}
