// Package subtitles implements the SRT handling the clip pipeline needs:
// parsing, generation with "[speaker]" attribution tags, selecting cues for a
// clip window, and rebasing source-relative timestamps to clip-relative ones.
package subtitles
