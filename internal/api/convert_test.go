package api_test

import (
	"testing"
	"time"

	"clipforge/internal/api"
	"clipforge/internal/queue"
	"clipforge/internal/stage"
	"clipforge/internal/workflow"
)

func TestFromQueueItemMapsFields(t *testing.T) {
	created := time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
	item := &queue.Item{
		ID:              7,
		Title:           "Town Hall",
		SourcePath:      "/inbox/town-hall.mp4",
		Status:          queue.StatusRendering,
		ProgressStage:   "Rendering",
		ProgressPercent: 40,
		ProgressMessage: "Cutting clip 2 of 5",
		CreatedAt:       created,
		AnalysisJSON:    `{"clips":[]}`,
		NeedsReview:     false,
	}

	dto := api.FromQueueItem(item)
	if dto.ID != 7 || dto.Title != "Town Hall" {
		t.Fatalf("unexpected identity fields: %+v", dto)
	}
	if dto.Status != "rendering" {
		t.Fatalf("unexpected status %q", dto.Status)
	}
	if dto.ProcessingLane != string(queue.LaneBackground) {
		t.Fatalf("unexpected lane %q", dto.ProcessingLane)
	}
	if dto.Progress.Percent != 40 || dto.Progress.Message != "Cutting clip 2 of 5" {
		t.Fatalf("unexpected progress %+v", dto.Progress)
	}
	if dto.CreatedAt != "2026-03-14T10:30:00.000Z" {
		t.Fatalf("unexpected created at %q", dto.CreatedAt)
	}
	if string(dto.Analysis) != `{"clips":[]}` {
		t.Fatalf("unexpected analysis payload %q", dto.Analysis)
	}
}

func TestFromQueueItemNil(t *testing.T) {
	dto := api.FromQueueItem(nil)
	if dto.ID != 0 || dto.Status != "" {
		t.Fatalf("expected zero DTO, got %+v", dto)
	}
}

func TestFromStatusSummarySortsStageHealth(t *testing.T) {
	summary := workflow.StatusSummary{
		Running: true,
		QueueStats: map[queue.Status]int{
			queue.StatusPending: 2,
			queue.StatusFailed:  1,
		},
		StageHealth: map[string]stage.Health{
			"transcriber": stage.Healthy("transcriber"),
			"prober":      stage.Unhealthy("prober", "ffprobe missing"),
		},
	}

	wf := api.FromStatusSummary(summary)
	if !wf.Running {
		t.Fatal("expected running")
	}
	if wf.QueueStats["pending"] != 2 || wf.QueueStats["failed"] != 1 {
		t.Fatalf("unexpected stats %+v", wf.QueueStats)
	}
	if len(wf.StageHealth) != 2 {
		t.Fatalf("expected 2 health entries, got %d", len(wf.StageHealth))
	}
	if wf.StageHealth[0].Name != "prober" || wf.StageHealth[0].Ready {
		t.Fatalf("expected prober first and unhealthy, got %+v", wf.StageHealth[0])
	}
	if wf.StageHealth[1].Name != "transcriber" || !wf.StageHealth[1].Ready {
		t.Fatalf("expected transcriber healthy, got %+v", wf.StageHealth[1])
	}
}

func TestFormatTime(t *testing.T) {
	if got := api.FormatTime(time.Time{}); got != "" {
		t.Fatalf("expected empty for zero time, got %q", got)
	}
	ts := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	if got := api.FormatTime(ts); got != "2026-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected formatted time %q", got)
	}
}
