package config

const (
	defaultConfigPath   = "~/.config/artistdb/config.toml"
	projectConfigName   = "artistdb.toml"
	defaultRegistryFile = "./artists.toml"
	defaultOutputDir    = "./artists"
	defaultStateDir     = "~/.local/share/artistdb"
	defaultLogDir       = "~/.local/share/artistdb/logs"
	defaultCodec        = "protobuf"
	defaultSaveDelayMS  = 500
	defaultAvatarURL    = "https://unavatar.io"
	defaultAvatarSize   = 400
	defaultDebounceMS   = 200
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RegistryFile: defaultRegistryFile,
			OutputDir:    defaultOutputDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Publish: Publish{
			Codec:             defaultCodec,
			SaveDelayMS:       defaultSaveDelayMS,
			RecreateOutputDir: true,
			BackupOnRewrite:   true,
		},
		Avatar: Avatar{
			ServiceURL: defaultAvatarURL,
			Size:       defaultAvatarSize,
		},
		Watch: Watch{
			DebounceMS: defaultDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
