package subtitles

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Cue is a single subtitle entry with times in seconds from stream start.
type Cue struct {
	Start   float64
	End     float64
	Speaker string
	Text    string
}

// Duration returns the cue length in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Parse decodes SRT content into cues. Cue indices in the input are ignored;
// a leading "[speaker]" tag on the text is split into the Speaker field.
// Malformed blocks are skipped rather than failing the whole file.
func Parse(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(content), "\n\n")
	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timingIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 || timingIdx+1 >= len(lines) {
			continue
		}
		parts := strings.Split(lines[timingIdx], "-->")
		if len(parts) != 2 {
			continue
		}
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(parts[1])
		if errStart != nil || errEnd != nil {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[timingIdx+1:], "\n"))
		if text == "" {
			continue
		}
		speaker, remainder := splitSpeakerTag(text)
		cues = append(cues, Cue{Start: start, End: end, Speaker: speaker, Text: remainder})
	}
	return cues
}

// Format renders cues as SRT content, numbering from 1. Cues with a Speaker
// are prefixed "[speaker] text" so speaker attribution survives round trips.
func Format(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteString("\n")
		if cue.Speaker != "" {
			b.WriteString("[" + cue.Speaker + "] ")
		}
		b.WriteString(cue.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Window returns the cues overlapping [start, end), sorted by start time.
func Window(cues []Cue, start, end float64) []Cue {
	selected := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if cue.End <= start || cue.Start >= end {
			continue
		}
		selected = append(selected, cue)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Start < selected[j].Start })
	return selected
}

// Merge combines consecutive cues into longer passages. Adjacent cues join
// when the silence between them is at most maxGap seconds, the combined cue
// stays within maxDuration seconds, and both carry the same speaker. A
// maxDuration <= 0 means no duration cap. Input order is preserved.
func Merge(cues []Cue, maxGap, maxDuration float64) []Cue {
	if len(cues) == 0 {
		return nil
	}
	merged := make([]Cue, 0, len(cues))
	current := cues[0]
	for _, cue := range cues[1:] {
		gap := cue.Start - current.End
		within := maxDuration <= 0 || cue.End-current.Start <= maxDuration
		if gap <= maxGap && within && cue.Speaker == current.Speaker {
			if cue.End > current.End {
				current.End = cue.End
			}
			current.Text = strings.TrimSpace(current.Text + " " + cue.Text)
			continue
		}
		merged = append(merged, current)
		current = cue
	}
	return append(merged, current)
}

// FilterBySpeaker returns the cues attributed to any of the given speakers.
// An empty speaker list matches nothing.
func FilterBySpeaker(cues []Cue, speakers []string) []Cue {
	if len(speakers) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(speakers))
	for _, speaker := range speakers {
		wanted[speaker] = struct{}{}
	}
	filtered := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if _, ok := wanted[cue.Speaker]; ok {
			filtered = append(filtered, cue)
		}
	}
	return filtered
}

// Rebase shifts cues by -offset and clamps them to [0, limit]. A limit <= 0
// means no upper clamp. Cues that collapse to zero duration are dropped.
// Used to turn source-relative cues into clip-relative ones.
func Rebase(cues []Cue, offset, limit float64) []Cue {
	rebased := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		start := cue.Start - offset
		end := cue.End - offset
		if start < 0 {
			start = 0
		}
		if limit > 0 && end > limit {
			end = limit
		}
		if end-start <= 0 {
			continue
		}
		cue.Start = start
		cue.End = end
		rebased = append(rebased, cue)
	}
	return rebased
}

// ParseTimestamp parses an SRT timestamp ("HH:MM:SS,mmm") into seconds.
// A period separator is tolerated since some generators emit it.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	// The fraction is positional: "5" means 500ms, not 5ms.
	fraction := timeParts[1]
	for len(fraction) < 3 {
		fraction += "0"
	}
	millis, errMS := strconv.Atoi(fraction[:3])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as an SRT timestamp ("HH:MM:SS,mmm").
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	totalMillis -= hours * 3_600_000
	minutes := totalMillis / 60_000
	totalMillis -= minutes * 60_000
	secs := totalMillis / 1000
	millis := totalMillis - secs*1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func splitSpeakerTag(text string) (string, string) {
	if !strings.HasPrefix(text, "[") {
		return "", text
	}
	end := strings.Index(text, "]")
	if end <= 1 {
		return "", text
	}
	speaker := strings.TrimSpace(text[1:end])
	remainder := strings.TrimSpace(text[end+1:])
	if speaker == "" || remainder == "" {
		return "", text
	}
	// Tags with internal newlines are dialogue, not speaker labels.
	if strings.ContainsAny(speaker, "\n") {
		return "", text
	}
	return speaker, remainder
}
