// Package transcribe runs the configured ASR binary against extracted audio
// and persists a timed transcript with word-level timings. Empty transcripts
// route the item to manual review rather than failing the pipeline.
package transcribe
