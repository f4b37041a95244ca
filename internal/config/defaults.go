package config

const (
	defaultDataDir    = "~/.local/share/loom"
	defaultStagingDir = "~/.local/share/loom/staging"
	defaultLogDir     = "~/.local/share/loom/logs"
	defaultBucketDir  = "~/.local/share/loom/bucket"
	defaultAPIBind    = "127.0.0.1:7519"

	defaultStorageBaseURL = "http://127.0.0.1:7519"
	defaultResponsesDir   = "responses"
	defaultSessionsDir    = "sessions"
	defaultThumbnailsDir  = "thumbnails"

	defaultTranscoderTimeoutSeconds = 300
	defaultPollMaxAttempts          = 15
	defaultPollBaseDelayMS          = 500

	defaultCompletedStatus     = "completed"
	defaultLabelStripWord      = "answer"
	defaultTitleMaxWords       = 5
	defaultFetchTimeoutSeconds = 120

	defaultFFprobeBinary = "ffprobe"
	defaultFFmpegBinary  = "ffmpeg"

	defaultEventPollInterval = 5
	defaultThumbnailRetries  = 2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Storage: Storage{
			BucketDir:     defaultBucketDir,
			BaseURL:       defaultStorageBaseURL,
			ResponsesDir:  defaultResponsesDir,
			SessionsDir:   defaultSessionsDir,
			ThumbnailsDir: defaultThumbnailsDir,
		},
		Transcoder: Transcoder{
			TimeoutSeconds:  defaultTranscoderTimeoutSeconds,
			PollMaxAttempts: defaultPollMaxAttempts,
			PollBaseDelayMS: defaultPollBaseDelayMS,
		},
		Ingest: Ingest{
			CompletedStatus:     defaultCompletedStatus,
			LabelStripWord:      defaultLabelStripWord,
			TitleMaxWords:       defaultTitleMaxWords,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Tools: Tools{
			FFprobe: defaultFFprobeBinary,
			FFmpeg:  defaultFFmpegBinary,
		},
		Workflow: Workflow{
			EventPollInterval: defaultEventPollInterval,
			ThumbnailRetries:  defaultThumbnailRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
