package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external command. Tests substitute a fake to capture
// arguments without invoking real binaries.
type Runner func(ctx context.Context, name string, args ...string) error

// Run is the default Runner backed by os/exec.
func Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// QualitySettings maps a named quality tier to x264 encode parameters.
type QualitySettings struct {
	CRF    int
	Preset string
}

// SettingsForQuality resolves a quality name (low/medium/high) to encode
// settings. Unknown names fall back to medium.
func SettingsForQuality(quality string) QualitySettings {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case "low":
		return QualitySettings{CRF: 28, Preset: "fast"}
	case "high":
		return QualitySettings{CRF: 18, Preset: "slow"}
	default:
		return QualitySettings{CRF: 23, Preset: "medium"}
	}
}

// ExtractAudioArgs builds the argument list that extracts the full audio
// stream as mono 16kHz PCM WAV, the input format speech models expect.
func ExtractAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// CutClipArgs builds the argument list that re-encodes a time range of the
// source into a standalone clip. Re-encoding (rather than stream copy) keeps
// cut points frame-accurate; avoid_negative_ts keeps timestamps sane for
// players that reject negative PTS.
func CutClipArgs(source string, startSec, endSec float64, quality QualitySettings, videoCodec, dest string) []string {
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-to", formatSeconds(endSec),
		"-i", source,
		"-c:v", videoCodec,
		"-crf", strconv.Itoa(quality.CRF),
		"-preset", quality.Preset,
		"-c:a", "aac",
		"-avoid_negative_ts", "make_zero",
		dest,
	}
}

// CutClipBurnArgs is CutClipArgs with the given subtitle file burned into the
// video stream. The subtitle file must be clip-relative: -ss before -i resets
// output timestamps to zero, and the subtitles filter reads output time.
func CutClipBurnArgs(source string, startSec, endSec float64, quality QualitySettings, videoCodec, subtitlePath, dest string) []string {
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-to", formatSeconds(endSec),
		"-i", source,
		"-vf", "subtitles=" + escapeFilterPath(subtitlePath),
		"-c:v", videoCodec,
		"-crf", strconv.Itoa(quality.CRF),
		"-preset", quality.Preset,
		"-c:a", "aac",
		"-avoid_negative_ts", "make_zero",
		dest,
	}
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument,
// where backslashes, quotes, colons, and brackets are metacharacters.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
	return replacer.Replace(path)
}

// ThumbnailArgs builds the argument list that grabs a single frame at the
// given offset into the source.
func ThumbnailArgs(source string, atSec float64, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(atSec),
		"-i", source,
		"-vframes", "1",
		"-q:v", "2",
		dest,
	}
}

// ConcatArgs builds the argument list that joins pre-encoded clips listed in
// a concat demuxer manifest into a single reel without re-encoding.
func ConcatArgs(listPath, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		dest,
	}
}

func formatSeconds(value float64) string {
	if value < 0 {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', 3, 64)
}

// ExtractAudio extracts the full audio stream from source into a mono 16kHz
// WAV at dest.
func ExtractAudio(ctx context.Context, runner Runner, binary, source, dest string) error {
	if runner == nil {
		runner = Run
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if err := runner(ctx, binary, ExtractAudioArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// CutClip renders the [startSec, endSec] range of source into dest.
func CutClip(ctx context.Context, runner Runner, binary, source string, startSec, endSec float64, quality QualitySettings, videoCodec, dest string) error {
	if runner == nil {
		runner = Run
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if endSec <= startSec {
		return fmt.Errorf("ffmpeg cut clip: invalid range %.3f..%.3f", startSec, endSec)
	}
	if err := runner(ctx, binary, CutClipArgs(source, startSec, endSec, quality, videoCodec, dest)...); err != nil {
		return fmt.Errorf("ffmpeg cut clip: %w", err)
	}
	return nil
}

// CutClipBurn renders the [startSec, endSec] range of source into dest with
// the subtitle file burned in.
func CutClipBurn(ctx context.Context, runner Runner, binary, source string, startSec, endSec float64, quality QualitySettings, videoCodec, subtitlePath, dest string) error {
	if runner == nil {
		runner = Run
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if endSec <= startSec {
		return fmt.Errorf("ffmpeg cut clip: invalid range %.3f..%.3f", startSec, endSec)
	}
	if err := runner(ctx, binary, CutClipBurnArgs(source, startSec, endSec, quality, videoCodec, subtitlePath, dest)...); err != nil {
		return fmt.Errorf("ffmpeg cut clip: %w", err)
	}
	return nil
}

// Thumbnail captures a single frame from source at the given offset.
func Thumbnail(ctx context.Context, runner Runner, binary, source string, atSec float64, dest string) error {
	if runner == nil {
		runner = Run
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if err := runner(ctx, binary, ThumbnailArgs(source, atSec, dest)...); err != nil {
		return fmt.Errorf("ffmpeg thumbnail: %w", err)
	}
	return nil
}

// Concat joins the clips referenced by the concat manifest at listPath into dest.
func Concat(ctx context.Context, runner Runner, binary, listPath, dest string) error {
	if runner == nil {
		runner = Run
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if err := runner(ctx, binary, ConcatArgs(listPath, dest)...); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}
