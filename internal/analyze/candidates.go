package analyze

import (
	"strings"

	"clipforge/internal/subtitles"
	"clipforge/internal/transcribe"
)

// maxSegmentGap is the silence (seconds) that closes a segment-packed window.
const maxSegmentGap = 2.0

// maxWordGap is the pause (seconds) between consecutive words that closes a
// word-driven window. Word pauses are shorter than segment gaps; a second of
// silence mid-speech already marks a natural cut point.
const maxWordGap = 1.0

// hookWords boost candidate scores; they correlate with segments that work
// as standalone clips.
var hookWords = []string{
	"how", "why", "what", "important", "key", "secret", "best", "worst",
	"never", "always", "first", "finally", "amazing", "incredible",
	"problem", "solution", "mistake", "lesson", "tip", "trick",
}

// Candidate is a heuristic clip window derived from the transcript.
type Candidate struct {
	Start    float64
	End      float64
	Text     string
	Speaker  string
	Score    float64
	WordRate float64
}

// BuildCandidates derives candidate windows from the transcript. Word-driven
// windows are preferred when the transcript carries word timings, so clip
// boundaries snap to the spoken words rather than whole-segment edges;
// segment packing is the fallback. When every window is shorter than
// minSeconds the unfiltered list is returned so short sources still produce
// a clip.
func BuildCandidates(transcript transcribe.Transcript, minSeconds, maxSeconds float64) []Candidate {
	all := wordCandidates(transcript, maxSeconds)
	if all == nil {
		all = segmentCandidates(transcript, maxSeconds)
	}
	return keepLongEnough(all, minSeconds)
}

func keepLongEnough(all []Candidate, minSeconds float64) []Candidate {
	if minSeconds <= 0 {
		return all
	}
	filtered := make([]Candidate, 0, len(all))
	for _, cand := range all {
		if cand.End-cand.Start >= minSeconds {
			filtered = append(filtered, cand)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}
	return all
}

// wordCandidates packs the transcript's word stream into windows. A window
// closes on a pause longer than maxWordGap or when it would exceed
// maxSeconds. Returns nil when any spoken segment lacks word timings, since
// a partial word stream would silently drop speech; the segment packer
// handles those transcripts.
func wordCandidates(transcript transcribe.Transcript, maxSeconds float64) []Candidate {
	words := flattenWords(transcript)
	if len(words) == 0 {
		return nil
	}

	var all []Candidate
	var window []timedWord

	flush := func() {
		if len(window) == 0 {
			return
		}
		all = append(all, candidateFromWords(window))
		window = nil
	}

	for _, word := range words {
		if len(window) > 0 {
			last := window[len(window)-1]
			gap := word.start - last.end
			windowLen := word.end - window[0].start
			if gap > maxWordGap || (maxSeconds > 0 && windowLen > maxSeconds) {
				flush()
			}
		}
		window = append(window, word)
	}
	flush()
	return all
}

// segmentCandidates packs consecutive transcript segments into candidate
// windows. A window closes when it would exceed maxSeconds or when the gap
// to the next segment is longer than maxSegmentGap.
func segmentCandidates(transcript transcribe.Transcript, maxSeconds float64) []Candidate {
	var all []Candidate
	var window []transcribe.Segment

	flush := func() {
		if len(window) == 0 {
			return
		}
		all = append(all, candidateFromSegments(window))
		window = nil
	}

	for _, seg := range transcript.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if len(window) > 0 {
			last := window[len(window)-1]
			gap := seg.Start - last.End
			windowLen := seg.End - window[0].Start
			if gap > maxSegmentGap || (maxSeconds > 0 && windowLen > maxSeconds) {
				flush()
			}
		}
		window = append(window, seg)
	}
	flush()
	return all
}

type timedWord struct {
	text    string
	start   float64
	end     float64
	speaker string
}

func flattenWords(transcript transcribe.Transcript) []timedWord {
	var words []timedWord
	for _, seg := range transcript.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if len(seg.Words) == 0 {
			return nil
		}
		for _, word := range seg.Words {
			text := strings.TrimSpace(word.Text)
			if text == "" {
				continue
			}
			words = append(words, timedWord{text: text, start: word.Start, end: word.End, speaker: seg.Speaker})
		}
	}
	return words
}

func candidateFromWords(words []timedWord) Candidate {
	cand := Candidate{
		Start: words[0].start,
		End:   words[len(words)-1].end,
	}
	texts := make([]string, 0, len(words))
	totals := map[string]float64{}
	for _, word := range words {
		texts = append(texts, word.text)
		if word.speaker != "" {
			totals[word.speaker] += word.end - word.start
		}
	}
	cand.Text = strings.Join(texts, " ")
	cand.Speaker = dominantSpeaker(totals)
	if duration := cand.End - cand.Start; duration > 0 {
		cand.WordRate = float64(len(words)) / duration
	}
	cand.Score = scoreCandidate(cand)
	return cand
}

func candidateFromSegments(segments []transcribe.Segment) Candidate {
	cand := Candidate{
		Start:   segments[0].Start,
		End:     segments[len(segments)-1].End,
		Speaker: dominantSegmentSpeaker(segments),
	}
	texts := make([]string, 0, len(segments))
	wordCount := 0
	for _, seg := range segments {
		texts = append(texts, strings.TrimSpace(seg.Text))
		if len(seg.Words) > 0 {
			wordCount += len(seg.Words)
		} else {
			wordCount += len(strings.Fields(seg.Text))
		}
	}
	cand.Text = strings.Join(texts, " ")
	if duration := cand.End - cand.Start; duration > 0 {
		cand.WordRate = float64(wordCount) / duration
	}
	cand.Score = scoreCandidate(cand)
	return cand
}

func dominantSegmentSpeaker(segments []transcribe.Segment) string {
	totals := map[string]float64{}
	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		totals[seg.Speaker] += seg.End - seg.Start
	}
	return dominantSpeaker(totals)
}

func dominantSpeaker(totals map[string]float64) string {
	var best string
	var bestTotal float64
	for speaker, total := range totals {
		if total > bestTotal || (total == bestTotal && (best == "" || speaker < best)) {
			best = speaker
			bestTotal = total
		}
	}
	return best
}

// scoreCandidate rates a window on hook phrasing and information density.
func scoreCandidate(cand Candidate) float64 {
	lower := strings.ToLower(cand.Text)
	var score float64
	for _, hook := range hookWords {
		score += float64(strings.Count(lower, hook))
	}
	score += 0.5 * float64(strings.Count(cand.Text, "?"))
	// Typical conversational speech sits around 2.5 words/sec; denser
	// windows carry more content per rendered second.
	if cand.WordRate > 0 {
		density := cand.WordRate / 2.5
		if density > 2 {
			density = 2
		}
		score += density
	}
	return score
}

// heuristicClips converts the best-scoring candidates into clips.
func heuristicClips(transcript transcribe.Transcript, bounds Bounds) []Clip {
	candidates := BuildCandidates(transcript, bounds.MinSeconds, bounds.MaxSeconds)
	clips := make([]Clip, 0, len(candidates))
	for _, cand := range candidates {
		clips = append(clips, Clip{
			Title:   titleFromText(cand.Text),
			Summary: summaryFromText(cand.Text),
			Start:   cand.Start,
			End:     cand.End,
			Speaker: cand.Speaker,
			Score:   cand.Score,
		})
	}
	return sanitizeClips(clips, bounds)
}

// speakerMergeGap closes a per-speaker passage after a second of silence.
const speakerMergeGap = 1.0

// speakerClips builds per-speaker passages for the speaker prompt style.
// Each speaker's sentences are merged into continuous passages, scored like
// any other candidate, and sanitized against the shared bounds. Transcripts
// without speaker labels fall back to plain heuristic selection.
func speakerClips(transcript transcribe.Transcript, bounds Bounds) []Clip {
	cues := make([]subtitles.Cue, 0, len(transcript.Segments))
	var speakers []string
	seen := map[string]struct{}{}
	for _, seg := range transcript.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" || seg.Speaker == "" {
			continue
		}
		cues = append(cues, subtitles.Cue{Start: seg.Start, End: seg.End, Speaker: seg.Speaker, Text: text})
		if _, ok := seen[seg.Speaker]; !ok {
			seen[seg.Speaker] = struct{}{}
			speakers = append(speakers, seg.Speaker)
		}
	}
	if len(cues) == 0 {
		return heuristicClips(transcript, bounds)
	}

	var clips []Clip
	for _, speaker := range speakers {
		passages := subtitles.Merge(subtitles.FilterBySpeaker(cues, []string{speaker}), speakerMergeGap, bounds.MaxSeconds)
		for _, passage := range passages {
			cand := Candidate{
				Start:   passage.Start,
				End:     passage.End,
				Text:    passage.Text,
				Speaker: speaker,
			}
			if duration := cand.End - cand.Start; duration > 0 {
				cand.WordRate = float64(len(strings.Fields(passage.Text))) / duration
			}
			cand.Score = scoreCandidate(cand)
			clips = append(clips, Clip{
				Title:   titleFromText(cand.Text),
				Summary: summaryFromText(cand.Text),
				Start:   cand.Start,
				End:     cand.End,
				Speaker: speaker,
				Score:   cand.Score,
			})
		}
	}
	return sanitizeClips(clips, bounds)
}

func titleFromText(text string) string {
	words := strings.Fields(text)
	const maxWords = 8
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	title := strings.Join(words, " ")
	title = strings.TrimRight(title, ".,;:")
	if title == "" {
		return "Clip"
	}
	return title
}

func summaryFromText(text string) string {
	const limit = 160
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
