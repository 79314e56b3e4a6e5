package diarize

import "clipforge/internal/transcribe"

// AssignSpeakers labels each transcript segment with the speaker whose turns
// overlap it the most. Segments with no overlapping turn keep DefaultSpeaker.
// The transcript is modified in place.
func AssignSpeakers(transcript *transcribe.Transcript, turns []Turn) {
	for i := range transcript.Segments {
		transcript.Segments[i].Speaker = dominantSpeaker(transcript.Segments[i], turns)
	}
}

func dominantSpeaker(segment transcribe.Segment, turns []Turn) string {
	overlaps := map[string]float64{}
	for _, turn := range turns {
		start := segment.Start
		if turn.Start > start {
			start = turn.Start
		}
		end := segment.End
		if turn.End < end {
			end = turn.End
		}
		if end > start {
			overlaps[turn.Speaker] += end - start
		}
	}
	best := DefaultSpeaker
	var bestOverlap float64
	for speaker, overlap := range overlaps {
		if overlap > bestOverlap || (overlap == bestOverlap && speaker < best) {
			best = speaker
			bestOverlap = overlap
		}
	}
	if bestOverlap <= 0 {
		return DefaultSpeaker
	}
	return best
}
