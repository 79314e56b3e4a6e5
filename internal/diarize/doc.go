// Package diarize attributes transcript segments to speakers. It wraps an
// external diarization binary that emits RTTM, normalizes speaker labels to
// spk0..spkN, and assigns each segment the speaker with maximal time overlap.
package diarize
