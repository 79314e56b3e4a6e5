package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/config"
)

const userAgent = "Clipforge/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyFileDetected(ctx context.Context, title string) error
	NotifyTranscriptionCompleted(ctx context.Context, title string) error
	NotifyClipsSelected(ctx context.Context, title string, count int) error
	NotifyExportCompleted(ctx context.Context, title, finalDir string, clipCount int) error
	NotifyReviewRequired(ctx context.Context, title, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		prefs:    cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	prefs    config.Notifications
}

func (n *ntfyService) NotifyFileDetected(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Clipforge - File Queued",
		message: fmt.Sprintf("New video queued: %s", title),
		tags:    []string{"clipforge", "queue", "detected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscriptionCompleted(ctx context.Context, title string) error {
	if !n.prefs.Transcription {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Clipforge - Transcribed",
		message: fmt.Sprintf("Transcription complete: %s", title),
		tags:    []string{"clipforge", "transcribe", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipsSelected(ctx context.Context, title string, count int) error {
	if !n.prefs.Analysis {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Clipforge - Clips Selected",
		message: fmt.Sprintf("Selected %d clip(s) from: %s", count, title),
		tags:    []string{"clipforge", "analyze", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExportCompleted(ctx context.Context, title, finalDir string, clipCount int) error {
	if !n.prefs.Export {
		return nil
	}
	title = strings.TrimSpace(title)
	finalDir = strings.TrimSpace(finalDir)
	message := fmt.Sprintf("Exported %d clip(s): %s", clipCount, title)
	if finalDir != "" {
		message = fmt.Sprintf("%s\nFolder: %s", message, finalDir)
	}
	data := payload{
		title:    "Clipforge - Complete",
		message:  message,
		tags:     []string{"clipforge", "export", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, title, reason string) error {
	title = strings.TrimSpace(title)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual review required"
	}
	data := payload{
		title:   "Clipforge - Needs Review",
		message: fmt.Sprintf("Needs review: %s\n%s", title, reason),
		tags:    []string{"clipforge", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.prefs.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Clipforge - Error",
		message:  builder.String(),
		tags:     []string{"clipforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Clipforge - Test",
		message:  "Notification system test",
		tags:     []string{"clipforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFileDetected(context.Context, string) error                 { return nil }
func (noopService) NotifyTranscriptionCompleted(context.Context, string) error       { return nil }
func (noopService) NotifyClipsSelected(context.Context, string, int) error           { return nil }
func (noopService) NotifyExportCompleted(context.Context, string, string, int) error { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
