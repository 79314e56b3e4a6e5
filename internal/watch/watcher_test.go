package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/testsupport"
)

func newTestWatcher(t *testing.T) (*Watcher, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Watch.Enabled = true
	cfg.Watch.Dir = filepath.Join(testsupport.BaseDir(cfg), "inbox")
	cfg.Watch.SettleSeconds = 2
	store := testsupport.MustOpenStore(t, cfg)
	return NewWatcherWithDependencies(cfg, store, logging.NewNop(), nil), store
}

func TestMarkPendingIgnoresUnsupportedExtensions(t *testing.T) {
	w, _ := newTestWatcher(t)

	dir := t.TempDir()
	video := filepath.Join(dir, "talk.mp4")
	partial := filepath.Join(dir, "talk.mp4.part")
	testsupport.WriteFile(t, video, 64)
	testsupport.WriteFile(t, partial, 64)

	w.markPending(video)
	w.markPending(partial)
	w.markPending(filepath.Join(dir, "missing.mp4"))

	if len(w.pending) != 1 {
		t.Fatalf("expected 1 pending file, got %d", len(w.pending))
	}
	if _, ok := w.pending[video]; !ok {
		t.Fatalf("expected %s pending", video)
	}
}

func TestFlushSettledEnqueuesStableFiles(t *testing.T) {
	w, store := newTestWatcher(t)
	ctx := context.Background()

	video := filepath.Join(t.TempDir(), "talk.mp4")
	testsupport.WriteFile(t, video, 64)
	w.markPending(video)

	// Not yet settled.
	w.flushSettled(ctx, time.Now())
	if item, err := store.FindBySourcePath(ctx, video); err != nil || item != nil {
		t.Fatalf("expected no item before settle, got %v (err %v)", item, err)
	}

	w.flushSettled(ctx, time.Now().Add(3*time.Second))
	item, err := store.FindBySourcePath(ctx, video)
	if err != nil {
		t.Fatalf("find by source path: %v", err)
	}
	if item == nil {
		t.Fatal("expected item enqueued after settle")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if len(w.pending) != 0 {
		t.Fatalf("expected pending map drained, got %d entries", len(w.pending))
	}
}

func TestFlushSettledRestartsClockOnGrowth(t *testing.T) {
	w, store := newTestWatcher(t)
	ctx := context.Background()

	video := filepath.Join(t.TempDir(), "talk.mp4")
	testsupport.WriteFile(t, video, 64)
	w.markPending(video)

	// The file grows between checks; the settle clock restarts.
	testsupport.WriteFile(t, video, 128)
	grew := time.Now().Add(3 * time.Second)
	w.flushSettled(ctx, grew)
	if item, _ := store.FindBySourcePath(ctx, video); item != nil {
		t.Fatal("expected growing file to stay pending")
	}

	w.flushSettled(ctx, grew.Add(3*time.Second))
	if item, _ := store.FindBySourcePath(ctx, video); item == nil {
		t.Fatal("expected item enqueued once stable")
	}
}

func TestEnqueueSkipsDuplicates(t *testing.T) {
	w, store := newTestWatcher(t)
	ctx := context.Background()

	video := filepath.Join(t.TempDir(), "talk.mp4")
	testsupport.WriteFile(t, video, 64)
	testsupport.NewFile(t, store, video)

	w.enqueue(ctx, video)

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestScanExistingPicksUpInboxFiles(t *testing.T) {
	w, _ := newTestWatcher(t)

	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.mp4"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "b.mkv"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 64)

	w.scanExisting(dir)
	if len(w.pending) != 2 {
		t.Fatalf("expected 2 pending files, got %d", len(w.pending))
	}
}
