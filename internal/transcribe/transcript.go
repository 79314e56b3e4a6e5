package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Word is a single recognized word with timing in seconds.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a contiguous span of recognized speech.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Words   []Word  `json:"words,omitempty"`
}

// Transcript is the full ASR output persisted on the queue item.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// PlainText concatenates segment text with single spaces.
func (t Transcript) PlainText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Duration returns the end time of the last segment.
func (t Transcript) Duration() float64 {
	var last float64
	for _, seg := range t.Segments {
		if seg.End > last {
			last = seg.End
		}
	}
	return last
}

// WordCount returns the total number of word timings across segments.
func (t Transcript) WordCount() int {
	count := 0
	for _, seg := range t.Segments {
		count += len(seg.Words)
	}
	return count
}

// Words flattens all word timings in segment order.
func (t Transcript) Words() []Word {
	words := make([]Word, 0, t.WordCount())
	for _, seg := range t.Segments {
		words = append(words, seg.Words...)
	}
	return words
}

// Empty reports whether the transcript carries no usable speech.
func (t Transcript) Empty() bool {
	return strings.TrimSpace(t.PlainText()) == ""
}

// LoadJSON reads an ASR output file. The expected shape matches what whisper
// CLIs emit: a top-level segments array with optional per-word timings.
func LoadJSON(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return Transcript{}, fmt.Errorf("parse transcript json: %w", err)
	}
	for i := range transcript.Segments {
		transcript.Segments[i].Text = strings.TrimSpace(transcript.Segments[i].Text)
	}
	return transcript, nil
}
