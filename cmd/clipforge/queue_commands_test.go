package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/queue"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4"); err != nil {
		t.Fatalf("alpha item: %v", err)
	}

	beta, err := env.store.NewFile(ctx, "/videos/Beta Panel.mp4")
	if err != nil {
		t.Fatalf("beta item: %v", err)
	}
	beta.Status = queue.StatusFailed
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Alpha Talk")
	requireContains(t, out, "Beta Panel")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --status: %v", err)
	}
	requireContains(t, out, "Beta Panel")
	if strings.Contains(out, "Alpha Talk") {
		t.Fatalf("status filter leaked pending item: %q", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4")
	if err != nil {
		t.Fatalf("alpha item: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status after clear: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4")
	if err != nil {
		t.Fatalf("alpha item: %v", err)
	}
	alpha.Status = queue.StatusFailed
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, "Retried 1 items")
}

func TestQueueRetryInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "retry", "abc"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid item id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestQueueListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4"); err != nil {
		t.Fatalf("alpha item: %v", err)
	}
	if _, err := env.store.NewFile(ctx, "/videos/Beta Panel.mp4"); err != nil {
		t.Fatalf("beta item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}

	var listing struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(listing.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(listing.Items))
	}
	for _, item := range listing.Items {
		if _, ok := item["id"]; !ok {
			t.Fatal("missing 'id' key in JSON item")
		}
		if _, ok := item["status"]; !ok {
			t.Fatal("missing 'status' key in JSON item")
		}
	}
}

func TestQueueDescribeJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4")
	if err != nil {
		t.Fatalf("alpha item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "describe", fmt.Sprintf("%d", item.ID), "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe --json: %v", err)
	}

	var detail struct {
		Item map[string]any `json:"item"`
	}
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if detail.Item["id"] != float64(item.ID) {
		t.Fatalf("expected id %d, got %v", item.ID, detail.Item["id"])
	}
	if detail.Item["title"] != "Alpha Talk" {
		t.Fatalf("expected title Alpha Talk, got %v", detail.Item["title"])
	}
}

func TestQueueRemoveAndHealth(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewFile(ctx, "/videos/Alpha Talk.mp4")
	if err != nil {
		t.Fatalf("alpha item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Total: 1")
	requireContains(t, out, "Pending: 1")

	out, _, err = runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed 1 items")

	out, _, err = runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health after remove: %v", err)
	}
	requireContains(t, out, "Total: 0")
}

func TestQueueCommandsOfflineFallback(t *testing.T) {
	env := setupCLITestEnv(t)
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	out, _, err := runCLI(t, []string{"queue", "list"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("offline queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")

	videoPath := filepath.Join(env.cfg.Paths.StagingDir, "Offline Talk.mp4")
	if err := os.WriteFile(videoPath, []byte("data"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	out, _, err = runCLI(t, []string{"add", videoPath}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("offline add: %v", err)
	}
	requireContains(t, out, "Queued #")
	requireContains(t, out, "Offline Talk")

	out, _, err = runCLI(t, []string{"queue", "list"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("offline queue list after add: %v", err)
	}
	requireContains(t, out, "Offline Talk")
}

func TestAddCommandRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	deadSocket := filepath.Join(t.TempDir(), "missing.sock")

	textPath := filepath.Join(env.cfg.Paths.StagingDir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("notes"), 0o644); err != nil {
		t.Fatalf("write text file: %v", err)
	}

	_, _, err := runCLI(t, []string{"add", textPath}, deadSocket, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unsupported file extension") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}
