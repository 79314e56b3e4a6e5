// Package deps verifies the external binaries the pipeline shells out to:
// ffmpeg, ffprobe, the ASR command, and the optional diarization command.
// It also enforces the ffmpeg version floor the renderer depends on.
package deps
