package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// MinFFmpegMajor is the oldest ffmpeg major version the clip pipeline
// supports. Older releases lack the avoid_negative_ts semantics the renderer
// relies on.
const MinFFmpegMajor = 4

var ffmpegVersionPattern = regexp.MustCompile(`ffmpeg version (?:n)?(\d+)(?:\.(\d+))?`)

// FFmpegVersion holds the parsed version reported by "ffmpeg -version".
type FFmpegVersion struct {
	Major int
	Minor int
	Raw   string
}

func (v FFmpegVersion) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CheckFFmpegVersion runs "ffmpeg -version" and verifies the binary meets the
// supported version floor. The returned Status carries the resolved version in
// Detail even on success.
func CheckFFmpegVersion(ctx context.Context, binary string) Status {
	status := Status{
		Name:        "FFmpeg version",
		Command:     strings.TrimSpace(binary),
		Description: fmt.Sprintf("ffmpeg %d.x or newer required", MinFFmpegMajor),
	}
	if status.Command == "" {
		status.Command = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, status.Command, "-version")
	output, err := cmd.Output()
	if err != nil {
		status.Detail = fmt.Sprintf("failed to run %q: %v", status.Command+" -version", err)
		return status
	}

	version, err := ParseFFmpegVersion(string(output))
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Detail = "version " + version.String()
	if version.Major < MinFFmpegMajor {
		status.Detail = fmt.Sprintf("version %s is older than the supported floor %d.x", version, MinFFmpegMajor)
		return status
	}
	status.Available = true
	return status
}

// ParseFFmpegVersion extracts the version number from "ffmpeg -version" output.
// Distribution builds vary: "ffmpeg version 6.1.1-3ubuntu5", "ffmpeg version
// n7.0", and git snapshots like "ffmpeg version N-109615-g1234" all appear in
// the wild. Git snapshots carry no release number and are rejected.
func ParseFFmpegVersion(output string) (FFmpegVersion, error) {
	firstLine := output
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		firstLine = output[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	match := ffmpegVersionPattern.FindStringSubmatch(firstLine)
	if match == nil {
		return FFmpegVersion{}, fmt.Errorf("unrecognized ffmpeg version output %q", firstLine)
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return FFmpegVersion{}, fmt.Errorf("parse ffmpeg major version %q: %w", match[1], err)
	}
	version := FFmpegVersion{Major: major}
	if match[2] != "" {
		if minor, err := strconv.Atoi(match[2]); err == nil {
			version.Minor = minor
		}
	}
	if raw := strings.TrimPrefix(firstLine, "ffmpeg version "); raw != firstLine {
		if fields := strings.Fields(raw); len(fields) > 0 {
			version.Raw = fields[0]
		}
	}
	return version, nil
}
