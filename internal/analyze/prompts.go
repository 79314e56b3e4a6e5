package analyze

import (
	"fmt"
	"strings"

	"clipforge/internal/transcribe"
)

// Prompt styles steer what the model optimizes for when selecting clips.
const (
	StyleHighlight = "highlight"
	StyleSummary   = "summary"
	StyleSpeaker   = "speaker"
)

const systemPrompt = `You are a video editor selecting clips from a transcript.
Respond with JSON only, matching this schema exactly:
{"clips":[{"title":"...","summary":"...","start":0.0,"end":0.0,"speaker":"..."}]}
Times are seconds from the start of the source video. Clips must not overlap.
Use only times that appear in the transcript. Omit "speaker" when unknown.`

// buildUserPrompt renders the transcript with timings plus style-specific
// selection instructions.
func buildUserPrompt(style string, transcript transcribe.Transcript, bounds Bounds) string {
	var b strings.Builder

	switch style {
	case StyleSummary:
		b.WriteString("Select the clips that together summarize the whole video. ")
		b.WriteString("Prefer coverage over individual punch; every major topic should appear in some clip.\n")
	case StyleSpeaker:
		b.WriteString("Select the strongest clip(s) for each distinct speaker. ")
		b.WriteString("Every clip must stay within a single speaker's turns and carry that speaker's label.\n")
	default:
		b.WriteString("Select the most engaging, self-contained highlight clips. ")
		b.WriteString("Prefer moments with a hook: questions, key insights, strong statements.\n")
	}

	fmt.Fprintf(&b, "Pick at most %d clips, each between %.0f and %.0f seconds long.\n",
		bounds.MaxClips, bounds.MinSeconds, bounds.MaxSeconds)
	if bounds.DurationSeconds > 0 {
		fmt.Fprintf(&b, "The video is %.1f seconds long.\n", bounds.DurationSeconds)
	}
	b.WriteString("\nTranscript:\n")
	for _, seg := range transcript.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "[%.2f-%.2f] (%s) %s\n", seg.Start, seg.End, seg.Speaker, text)
		} else {
			fmt.Fprintf(&b, "[%.2f-%.2f] %s\n", seg.Start, seg.End, text)
		}
	}
	return b.String()
}

// llmClipResponse is the JSON payload the model is instructed to return.
type llmClipResponse struct {
	Clips []Clip `json:"clips"`
}
