// Package probe implements the first pipeline stage: ffprobe inspection of a
// queued source file and extraction of its audio track as mono 16kHz WAV.
// Sources without audio are routed to manual review instead of failing.
package probe
