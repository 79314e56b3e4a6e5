package config

const (
	defaultStagingDir        = "~/.local/share/clipforge/staging"
	defaultLibraryDir        = "~/clips"
	defaultLogDir            = "~/.local/share/clipforge/logs"
	defaultReviewDir         = "~/clips/review"
	defaultLogRetentionDays  = 60
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultASRBinary         = "whisper"
	defaultASRModel          = "large-v3"
	defaultASRDevice         = "cpu"
	defaultDiarizeBinary     = "diarize"
	defaultDiarizeModel      = "pyannote/speaker-diarization-3.1"
	defaultDiarizeDevice     = "cpu"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/clipforge/clipforge"
	defaultLLMTitle          = "ClipForge Analyzer"
	defaultLLMTimeoutSeconds = 120
	defaultLLMPromptStyle    = "highlight"
	defaultClipMinSeconds    = 8.0
	defaultClipMaxSeconds    = 90.0
	defaultMaxClips          = 5
	defaultClipQuality       = "medium"
	defaultVideoCodec        = "libx264"
	defaultWatchSettleSecs   = 10
	defaultHeartbeatInterval = 15
	defaultHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			ReviewDir:  defaultReviewDir,
		},
		ASR: ASR{
			Binary: defaultASRBinary,
			Model:  defaultASRModel,
			Device: defaultASRDevice,
		},
		Diarization: Diarization{
			Enabled: false,
			Binary:  defaultDiarizeBinary,
			Model:   defaultDiarizeModel,
			Device:  defaultDiarizeDevice,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			PromptStyle:    defaultLLMPromptStyle,
		},
		Clips: Clips{
			MinSeconds: defaultClipMinSeconds,
			MaxSeconds: defaultClipMaxSeconds,
			MaxClips:   defaultMaxClips,
			Quality:    defaultClipQuality,
			VideoCodec: defaultVideoCodec,
			Thumbnails: true,
			BuildReel:  false,
		},
		Subtitles: Subtitles{
			Enabled:         true,
			IncludeSpeakers: true,
			BurnIn:          false,
		},
		Watch: Watch{
			Enabled:       false,
			SettleSeconds: defaultWatchSettleSecs,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Transcription:  true,
			Analysis:       true,
			Export:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
