package config

const (
	defaultDBPath        = "~/.fond-memory/memory.db"
	defaultSlotKey       = "fond-memory-album-v1"
	defaultContentType   = "audio/webm"
	defaultExtension     = "webm"
	defaultChunkSize     = 32 * 1024
	defaultEmbedMedia    = true
	defaultLogFormat     = "console"
	defaultLogLevel      = "warn"
	defaultConfigPathRel = "~/.config/fond-memory/config.toml"

	// EnvDBPath overrides storage.db_path when set.
	EnvDBPath = "FOND_MEMORY_DB"
)

func defaultCaptureCommand() []string {
	return []string{
		"ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "pulse", "-i", "default",
		"-f", "webm", "-",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Storage: Storage{
			DBPath:  defaultDBPath,
			SlotKey: defaultSlotKey,
		},
		Capture: Capture{
			Command:     defaultCaptureCommand(),
			ContentType: defaultContentType,
			Extension:   defaultExtension,
			ChunkSize:   defaultChunkSize,
		},
		Export: Export{
			EmbedMedia: defaultEmbedMedia,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
