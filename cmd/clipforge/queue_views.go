package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"clipforge/internal/ipc"
	"clipforge/internal/queue"
)

// buildQueueStatusRows orders stats by pipeline position so the table reads
// top to bottom the way items flow.
func buildQueueStatusRows(stats map[string]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[string(status)]
		if !ok || count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	return rows
}

func buildQueueListRows(items []ipc.QueueItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Title,
			item.Status,
			formatProgress(item),
			formatCreated(item.CreatedAt),
		})
	}
	return rows
}

func formatProgress(item ipc.QueueItem) string {
	stage := strings.TrimSpace(item.Progress.Stage)
	if stage == "" {
		return ""
	}
	return fmt.Sprintf("%s %.0f%%", stage, item.Progress.Percent)
}

func formatCreated(value string) string {
	if value == "" {
		return ""
	}
	ts, err := time.Parse("2006-01-02T15:04:05.000Z07:00", value)
	if err != nil {
		return value
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func describeLines(item ipc.QueueItem) []string {
	lines := []string{
		fmt.Sprintf("ID:           %d", item.ID),
		fmt.Sprintf("Title:        %s", item.Title),
		fmt.Sprintf("Status:       %s", item.Status),
		fmt.Sprintf("Lane:         %s", item.ProcessingLane),
		fmt.Sprintf("Source:       %s", item.SourcePath),
	}
	if item.Progress.Stage != "" {
		lines = append(lines, fmt.Sprintf("Progress:     %s %.0f%% %s", item.Progress.Stage, item.Progress.Percent, item.Progress.Message))
	}
	if item.AudioFile != "" {
		lines = append(lines, fmt.Sprintf("Audio:        %s", item.AudioFile))
	}
	if item.FinalDir != "" {
		lines = append(lines, fmt.Sprintf("Final dir:    %s", item.FinalDir))
	}
	if item.ErrorMessage != "" {
		lines = append(lines, fmt.Sprintf("Error:        %s", item.ErrorMessage))
	}
	if item.NeedsReview {
		lines = append(lines, fmt.Sprintf("Review:       %s", item.ReviewReason))
	}
	if item.CreatedAt != "" {
		lines = append(lines, fmt.Sprintf("Created:      %s", formatCreated(item.CreatedAt)))
	}
	if item.UpdatedAt != "" {
		lines = append(lines, fmt.Sprintf("Updated:      %s", formatCreated(item.UpdatedAt)))
	}
	return lines
}
