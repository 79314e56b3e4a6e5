package analyze

import (
	"sort"
	"strings"
)

// Analysis sources. LLM selection is preferred; the heuristic selector backs
// it when no API key is configured.
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// Clip is one selected highlight with source-relative times in seconds.
type Clip struct {
	Title   string  `json:"title"`
	Summary string  `json:"summary,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Analysis is the clip selection persisted on the queue item.
type Analysis struct {
	PromptStyle string `json:"prompt_style"`
	Source      string `json:"source"`
	Clips       []Clip `json:"clips"`
}

// Bounds constrain clip selection.
type Bounds struct {
	MinSeconds float64
	MaxSeconds float64
	MaxClips   int
	// DurationSeconds is the source duration; clips are clamped to it when > 0.
	DurationSeconds float64
}

// sanitizeClips clamps, filters, and de-overlaps a raw clip list:
// times are clamped to [0, duration], clips outside the length bounds are
// trimmed or dropped, overlapping clips lose to the earlier one, and the
// result is capped at MaxClips ordered by start time.
func sanitizeClips(clips []Clip, bounds Bounds) []Clip {
	cleaned := make([]Clip, 0, len(clips))
	for _, clip := range clips {
		if clip.Start < 0 {
			clip.Start = 0
		}
		if bounds.DurationSeconds > 0 && clip.End > bounds.DurationSeconds {
			clip.End = bounds.DurationSeconds
		}
		if clip.End <= clip.Start {
			continue
		}
		if bounds.MaxSeconds > 0 && clip.Duration() > bounds.MaxSeconds {
			clip.End = clip.Start + bounds.MaxSeconds
		}
		if bounds.MinSeconds > 0 && clip.Duration() < bounds.MinSeconds {
			continue
		}
		clip.Title = strings.TrimSpace(clip.Title)
		clip.Summary = strings.TrimSpace(clip.Summary)
		cleaned = append(cleaned, clip)
	}

	sort.Slice(cleaned, func(i, j int) bool { return cleaned[i].Start < cleaned[j].Start })

	deduped := cleaned[:0]
	var lastEnd float64
	for _, clip := range cleaned {
		if len(deduped) > 0 && clip.Start < lastEnd {
			continue
		}
		deduped = append(deduped, clip)
		lastEnd = clip.End
	}

	if bounds.MaxClips > 0 && len(deduped) > bounds.MaxClips {
		// Keep the strongest clips, then restore chronological order.
		byScore := append([]Clip(nil), deduped...)
		sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].Score > byScore[j].Score })
		byScore = byScore[:bounds.MaxClips]
		sort.Slice(byScore, func(i, j int) bool { return byScore[i].Start < byScore[j].Start })
		deduped = byScore
	}
	return deduped
}
