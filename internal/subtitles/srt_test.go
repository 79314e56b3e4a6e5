package subtitles_test

import (
	"math"
	"strings"
	"testing"

	"clipforge/internal/subtitles"
)

func TestParseRoundTrip(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"00:00:01,500 --> 00:00:04,000",
		"[spk0] Welcome back everyone.",
		"",
		"2",
		"00:00:04,250 --> 00:00:07,750",
		"Today we talk about pipelines.",
		"",
	}, "\n")

	cues := subtitles.Parse(content)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Speaker != "spk0" {
		t.Fatalf("expected speaker tag, got %q", cues[0].Speaker)
	}
	if cues[0].Text != "Welcome back everyone." {
		t.Fatalf("unexpected text %q", cues[0].Text)
	}
	if cues[0].Start != 1.5 || cues[0].End != 4.0 {
		t.Fatalf("unexpected timing %v..%v", cues[0].Start, cues[0].End)
	}
	if cues[1].Speaker != "" {
		t.Fatalf("expected untagged cue, got speaker %q", cues[1].Speaker)
	}

	formatted := subtitles.Format(cues)
	reparsed := subtitles.Parse(formatted)
	if len(reparsed) != 2 {
		t.Fatalf("round trip lost cues: %d", len(reparsed))
	}
	if reparsed[0].Speaker != "spk0" || reparsed[0].Text != cues[0].Text {
		t.Fatalf("round trip mutated cue: %+v", reparsed[0])
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"1",
		"garbage timing line",
		"text",
		"",
		"2",
		"00:00:10,000 --> 00:00:12,000",
		"Survivor cue.",
		"",
	}, "\n")
	cues := subtitles.Parse(content)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Text != "Survivor cue." {
		t.Fatalf("unexpected cue %+v", cues[0])
	}
}

func TestWindowSelectsOverlaps(t *testing.T) {
	cues := []subtitles.Cue{
		{Start: 0, End: 5, Text: "before"},
		{Start: 8, End: 12, Text: "straddles start"},
		{Start: 15, End: 18, Text: "inside"},
		{Start: 19, End: 25, Text: "straddles end"},
		{Start: 30, End: 32, Text: "after"},
	}
	window := subtitles.Window(cues, 10, 20)
	if len(window) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(window))
	}
	if window[0].Text != "straddles start" || window[2].Text != "straddles end" {
		t.Fatalf("unexpected window selection: %+v", window)
	}
}

func TestRebaseClampsToClip(t *testing.T) {
	cues := []subtitles.Cue{
		{Start: 8, End: 12, Text: "straddles start"},
		{Start: 15, End: 18, Text: "inside"},
		{Start: 19, End: 25, Text: "straddles end"},
	}
	rebased := subtitles.Rebase(cues, 10, 10)
	if len(rebased) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(rebased))
	}
	if rebased[0].Start != 0 || rebased[0].End != 2 {
		t.Fatalf("unexpected first cue %v..%v", rebased[0].Start, rebased[0].End)
	}
	if rebased[2].Start != 9 || rebased[2].End != 10 {
		t.Fatalf("unexpected last cue %v..%v", rebased[2].Start, rebased[2].End)
	}
}

func TestRebaseDropsCollapsedCues(t *testing.T) {
	cues := []subtitles.Cue{{Start: 5, End: 9, Text: "fully before"}}
	if got := subtitles.Rebase(cues, 10, 10); len(got) != 0 {
		t.Fatalf("expected no cues, got %+v", got)
	}
}

func TestMergeCombinesCloseCues(t *testing.T) {
	cues := []subtitles.Cue{
		{Start: 0, End: 2, Speaker: "spk0", Text: "hello there"},
		{Start: 2.5, End: 4, Speaker: "spk0", Text: "again"},
		{Start: 6, End: 8, Speaker: "spk0", Text: "after a pause"},
		{Start: 8.5, End: 9, Speaker: "spk1", Text: "other voice"},
	}
	merged := subtitles.Merge(cues, 1, 30)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged cues, got %+v", merged)
	}
	if merged[0].Start != 0 || merged[0].End != 4 {
		t.Fatalf("unexpected merged span %v..%v", merged[0].Start, merged[0].End)
	}
	if merged[0].Text != "hello there again" {
		t.Fatalf("unexpected merged text %q", merged[0].Text)
	}
	if merged[1].Text != "after a pause" {
		t.Fatalf("expected pause to break the merge, got %+v", merged[1])
	}
	if merged[2].Speaker != "spk1" {
		t.Fatalf("expected speaker change to break the merge, got %+v", merged[2])
	}
}

func TestMergeHonorsMaxDuration(t *testing.T) {
	cues := []subtitles.Cue{
		{Start: 0, End: 20, Text: "long opening"},
		{Start: 20.5, End: 45, Text: "would overflow"},
	}
	merged := subtitles.Merge(cues, 1, 30)
	if len(merged) != 2 {
		t.Fatalf("expected duration cap to prevent merging, got %+v", merged)
	}
}

func TestFilterBySpeaker(t *testing.T) {
	cues := []subtitles.Cue{
		{Start: 0, End: 2, Speaker: "spk0", Text: "first"},
		{Start: 2, End: 4, Speaker: "spk1", Text: "second"},
		{Start: 4, End: 6, Speaker: "spk0", Text: "third"},
	}
	filtered := subtitles.FilterBySpeaker(cues, []string{"spk0"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 cues for spk0, got %+v", filtered)
	}
	if filtered[0].Text != "first" || filtered[1].Text != "third" {
		t.Fatalf("unexpected filtered cues %+v", filtered)
	}
	if got := subtitles.FilterBySpeaker(cues, nil); len(got) != 0 {
		t.Fatalf("expected empty speaker list to match nothing, got %+v", got)
	}
}

func TestParseTimestampPadsShortFractions(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"00:00:01,5", 1.5},
		{"00:00:01.25", 1.25},
		{"00:00:01,250", 1.25},
	}
	for _, tc := range cases {
		got, err := subtitles.ParseTimestamp(tc.value)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestTimestampFormatting(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{3661.25, "01:01:01,250"},
		{-4, "00:00:00,000"},
		{math.NaN(), "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := subtitles.FormatTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("format %v: got %q, want %q", tc.seconds, got, tc.want)
		}
	}

	parsed, err := subtitles.ParseTimestamp("01:01:01,250")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != 3661.25 {
		t.Fatalf("unexpected parse result %v", parsed)
	}
	if _, err := subtitles.ParseTimestamp("nonsense"); err == nil {
		t.Fatal("expected parse error")
	}
}
