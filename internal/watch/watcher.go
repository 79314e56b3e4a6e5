package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/probe"
	"clipforge/internal/queue"
)

// Watcher monitors the inbox directory and enqueues new video files once they
// stop growing. Files being copied into the inbox trigger a stream of write
// events; a file is only enqueued after a full settle period without changes.
type Watcher struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service

	mu      sync.Mutex
	pending map[string]*pendingFile
}

type pendingFile struct {
	size     int64
	lastSeen time.Time
}

// NewWatcher constructs an inbox watcher using default dependencies.
func NewWatcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Watcher {
	return NewWatcherWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewWatcherWithDependencies allows injecting collaborators (used in tests).
func NewWatcherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Watcher {
	watchLogger := logger
	if watchLogger != nil {
		watchLogger = watchLogger.With(logging.String("component", "watcher"))
	}
	return &Watcher{
		cfg:      cfg,
		store:    store,
		logger:   watchLogger,
		notifier: notifier,
		pending:  make(map[string]*pendingFile),
	}
}

// Run watches the inbox until the context is cancelled. Existing files in the
// inbox are picked up on startup so a daemon restart loses nothing.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.WithContext(ctx, w.logger)

	dir := strings.TrimSpace(w.cfg.Watch.Dir)
	if dir == "" {
		return fmt.Errorf("watch dir not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure watch dir: %w", err)
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer notify.Close()
	if err := notify.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.scanExisting(dir)
	logger.Info("inbox watcher started",
		logging.String("watch_dir", dir),
		logging.Duration("settle", w.settle()),
	)

	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox watcher stopped")
			return ctx.Err()
		case event, ok := <-notify.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.markPending(event.Name)
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}
		case err, ok := <-notify.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logger.Warn("watcher error", logging.Error(err))
		case now := <-ticker.C:
			w.flushSettled(ctx, now)
		}
	}
}

func (w *Watcher) settle() time.Duration {
	seconds := w.cfg.Watch.SettleSeconds
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds) * time.Second
}

func (w *Watcher) tickInterval() time.Duration {
	interval := w.settle() / 2
	if interval < 200*time.Millisecond {
		interval = 200 * time.Millisecond
	}
	return interval
}

// scanExisting queues up files already sitting in the inbox.
func (w *Watcher) scanExisting(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("failed to scan watch dir", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.markPending(filepath.Join(dir, entry.Name()))
	}
}

// markPending records an observed file. Unsupported extensions are dropped
// here so partial downloads with temporary suffixes never enter the queue.
func (w *Watcher) markPending(path string) {
	if !probe.SupportedExtension(filepath.Ext(path)) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = &pendingFile{size: info.Size(), lastSeen: time.Now()}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, path)
}

// flushSettled enqueues every pending file that has not changed for a full
// settle period. A file whose size moved since the last check restarts its
// settle clock.
func (w *Watcher) flushSettled(ctx context.Context, now time.Time) {
	settle := w.settle()

	w.mu.Lock()
	ready := make([]string, 0, len(w.pending))
	for path, state := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.Size() != state.size {
			state.size = info.Size()
			state.lastSeen = now
			continue
		}
		if now.Sub(state.lastSeen) >= settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.enqueue(ctx, path)
	}
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	logger := logging.WithContext(ctx, w.logger)

	existing, err := w.store.FindBySourcePath(ctx, path)
	if err != nil {
		logger.Warn("failed to check for existing queue item", logging.Error(err))
		return
	}
	if existing != nil {
		logger.Info("skipping already queued file", logging.String("source_file", path))
		return
	}

	item, err := w.store.NewFile(ctx, path)
	if err != nil {
		logger.Warn("failed to enqueue file", logging.String("source_file", path), logging.Error(err))
		return
	}
	logger.Info("enqueued new file",
		logging.String("source_file", path),
		logging.Int64("item_id", item.ID),
	)

	if w.notifier != nil {
		if err := w.notifier.NotifyFileDetected(ctx, item.Title); err != nil {
			logger.Warn("file detection notification failed", logging.Error(err))
		}
	}
}
