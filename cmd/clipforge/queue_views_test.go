package main

import (
	"testing"

	"clipforge/internal/ipc"
)

func TestBuildQueueStatusRowsOrdersByPipeline(t *testing.T) {
	rows := buildQueueStatusRows(map[string]int{
		"completed": 2,
		"pending":   3,
		"failed":    1,
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "pending" {
		t.Fatalf("expected pending first, got %q", rows[0][0])
	}
	if rows[len(rows)-1][0] != "failed" && rows[len(rows)-1][0] != "completed" {
		t.Fatalf("unexpected last row %q", rows[len(rows)-1][0])
	}
}

func TestBuildQueueStatusRowsSkipsZeroCounts(t *testing.T) {
	rows := buildQueueStatusRows(map[string]int{"pending": 0, "failed": 1})
	if len(rows) != 1 || rows[0][0] != "failed" {
		t.Fatalf("expected single failed row, got %v", rows)
	}
}

func TestFormatProgress(t *testing.T) {
	item := ipc.QueueItem{}
	if got := formatProgress(item); got != "" {
		t.Fatalf("expected empty progress, got %q", got)
	}
	item.Progress.Stage = "Transcribing"
	item.Progress.Percent = 42.4
	if got := formatProgress(item); got != "Transcribing 42%" {
		t.Fatalf("unexpected progress %q", got)
	}
}

func TestDescribeLinesIncludesReview(t *testing.T) {
	item := ipc.QueueItem{
		ID:           7,
		Title:        "Panel",
		Status:       "review",
		NeedsReview:  true,
		ReviewReason: "llm returned no clips",
	}
	lines := describeLines(item)
	found := false
	for _, line := range lines {
		if line == "Review:       llm returned no clips" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected review line, got %v", lines)
	}
}
