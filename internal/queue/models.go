package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusProbing      Status = "probing"
	StatusProbed       Status = "probed"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusDiarizing    Status = "diarizing"
	StatusDiarized     Status = "diarized"
	StatusAnalyzing    Status = "analyzing"
	StatusAnalyzed     Status = "analyzed"
	StatusRendering    Status = "rendering"
	StatusRendered     Status = "rendered"
	StatusExporting    Status = "exporting"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusProbing,
	StatusProbed,
	StatusTranscribing,
	StatusTranscribed,
	StatusDiarizing,
	StatusDiarized,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusRendering,
	StatusRendered,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusProbing:      {},
	StatusTranscribing: {},
	StatusDiarizing:    {},
	StatusAnalyzing:    {},
	StatusRendering:    {},
	StatusExporting:    {},
}

type statusTransition struct {
	from Status
	to   Status
}

// rollbackTransitions returns the table that maps an interrupted item back to
// the start of its stage so work resumes without repeating earlier stages.
// The analyze stage starts from diarized only when diarization is enabled;
// otherwise interrupted analysis returns to transcribed, and diarized rows
// left over from an earlier configuration drain back to transcribed so the
// analyzer can pick them up.
func rollbackTransitions(diarizationEnabled bool) []statusTransition {
	if diarizationEnabled {
		return []statusTransition{
			{from: StatusProbing, to: StatusPending},
			{from: StatusTranscribing, to: StatusProbed},
			{from: StatusDiarizing, to: StatusTranscribed},
			{from: StatusAnalyzing, to: StatusDiarized},
			{from: StatusRendering, to: StatusAnalyzed},
			{from: StatusExporting, to: StatusRendered},
		}
	}
	return []statusTransition{
		{from: StatusProbing, to: StatusPending},
		{from: StatusTranscribing, to: StatusProbed},
		{from: StatusDiarizing, to: StatusTranscribed},
		{from: StatusDiarized, to: StatusTranscribed},
		{from: StatusAnalyzing, to: StatusTranscribed},
		{from: StatusRendering, to: StatusAnalyzed},
		{from: StatusExporting, to: StatusRendered},
	}
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	Title           string
	Status          Status
	MediaInfoJSON   string
	AudioFile       string
	TranscriptJSON  string
	SpeakersJSON    string
	AnalysisJSON    string
	ClipsJSON       string
	FinalDir        string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetReview parks the item for manual intervention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressMessage = reason
	i.LastHeartbeat = nil
}

// ProcessingLane partitions workflow into user-facing foreground stages and background work.
type ProcessingLane string

const (
	LaneForeground ProcessingLane = "foreground"
	LaneBackground ProcessingLane = "background"
)

// LaneForItem maps a queue item to its processing lane for observability purposes.
func LaneForItem(item *Item) ProcessingLane {
	if item == nil {
		return LaneForeground
	}
	switch item.Status {
	case StatusPending, StatusProbing:
		return LaneForeground
	case StatusProbed, StatusTranscribing, StatusTranscribed, StatusDiarizing,
		StatusDiarized, StatusAnalyzing, StatusAnalyzed, StatusRendering,
		StatusRendered, StatusExporting, StatusCompleted:
		return LaneBackground
	case StatusFailed, StatusReview:
		if item.AudioFile != "" {
			return LaneBackground
		}
		return LaneForeground
	default:
		return LaneForeground
	}
}
