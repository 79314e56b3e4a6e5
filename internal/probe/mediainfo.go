package probe

import (
	"strconv"
	"strings"

	"clipforge/internal/media/ffprobe"
)

// SupportedExtensions lists the container formats accepted for ingest.
var SupportedExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv"}

// SupportedExtension reports whether the extension (with leading dot) is ingestable.
func SupportedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, allowed := range SupportedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MediaInfo is the probed container summary persisted on the queue item.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Container       string  `json:"container"`
	SizeBytes       int64   `json:"size_bytes"`
	BitRate         int64   `json:"bit_rate"`
	VideoCodec      string  `json:"video_codec"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FrameRate       float64 `json:"frame_rate"`
	AudioCodec      string  `json:"audio_codec"`
	AudioChannels   int     `json:"audio_channels"`
	AudioSampleRate int     `json:"audio_sample_rate"`
	VideoStreams    int     `json:"video_streams"`
	AudioStreams    int     `json:"audio_streams"`
}

// FromProbe flattens an ffprobe result into the persisted summary.
func FromProbe(result ffprobe.Result) MediaInfo {
	info := MediaInfo{
		Container:    result.Format.FormatName,
		SizeBytes:    result.SizeBytes(),
		BitRate:      result.BitRate(),
		FrameRate:    result.FrameRate(),
		VideoStreams: result.VideoStreamCount(),
		AudioStreams: result.AudioStreamCount(),
	}
	if duration := result.DurationSeconds(); duration > 0 {
		info.DurationSeconds = duration
	}
	if video, ok := result.PrimaryVideoStream(); ok {
		info.VideoCodec = video.CodecName
		info.Width = video.Width
		info.Height = video.Height
	}
	if audio, ok := result.PrimaryAudioStream(); ok {
		info.AudioCodec = audio.CodecName
		info.AudioChannels = audio.Channels
		if rate, err := strconv.Atoi(strings.TrimSpace(audio.SampleRate)); err == nil {
			info.AudioSampleRate = rate
		}
	}
	return info
}
