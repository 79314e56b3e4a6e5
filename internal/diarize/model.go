package diarize

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultSpeaker is assigned when diarization is disabled or no turn overlaps
// a transcript segment.
const DefaultSpeaker = "spk0"

// Turn is a contiguous span attributed to one speaker.
type Turn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SpeakerSummary aggregates one speaker's share of the recording.
type SpeakerSummary struct {
	Speaker         string  `json:"speaker"`
	TurnCount       int     `json:"turn_count"`
	SpeakingSeconds float64 `json:"speaking_seconds"`
}

// Diarization is the speaker analysis persisted on the queue item.
type Diarization struct {
	Enabled  bool             `json:"enabled"`
	Turns    []Turn           `json:"turns,omitempty"`
	Speakers []SpeakerSummary `json:"speakers"`
}

// ParseRTTM reads speaker turns from an RTTM file, the interchange format
// diarization tools emit. Lines look like:
//
//	SPEAKER <file> 1 <onset> <duration> <NA> <NA> <label> <NA> <NA>
//
// Labels are normalized to spk0..spkN in order of first appearance.
func ParseRTTM(path string) ([]Turn, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read rttm: %w", err)
	}
	defer file.Close()

	var turns []Turn
	labels := map[string]string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 8 || !strings.EqualFold(fields[0], "SPEAKER") {
			continue
		}
		onset, errOnset := strconv.ParseFloat(fields[3], 64)
		duration, errDur := strconv.ParseFloat(fields[4], 64)
		if errOnset != nil || errDur != nil || duration <= 0 {
			continue
		}
		label, ok := labels[fields[7]]
		if !ok {
			label = fmt.Sprintf("spk%d", len(labels))
			labels[fields[7]] = label
		}
		turns = append(turns, Turn{Speaker: label, Start: onset, End: onset + duration})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rttm: %w", err)
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}

// Summarize aggregates per-speaker totals from turns, ordered by label.
func Summarize(turns []Turn) []SpeakerSummary {
	totals := map[string]*SpeakerSummary{}
	for _, turn := range turns {
		summary, ok := totals[turn.Speaker]
		if !ok {
			summary = &SpeakerSummary{Speaker: turn.Speaker}
			totals[turn.Speaker] = summary
		}
		summary.TurnCount++
		summary.SpeakingSeconds += turn.End - turn.Start
	}
	summaries := make([]SpeakerSummary, 0, len(totals))
	for _, summary := range totals {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Speaker < summaries[j].Speaker })
	return summaries
}
