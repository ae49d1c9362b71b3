package config

const (
	defaultDownloadDir   = "~/.local/share/ytcourier/downloads"
	defaultLogDir        = "~/.local/share/ytcourier/logs"
	defaultWhitelistPath = "~/.local/share/ytcourier/allowed_users.json"
	defaultHistoryDBPath = "~/.local/share/ytcourier/history.db"
	defaultPollTimeout   = 30
	defaultMaxBatchSize  = 10
	defaultMaxFileBytes  = 50 << 20 // Telegram bot upload ceiling
	defaultFetchTimeout  = 900
	defaultYtDlpBinary   = "yt-dlp"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir:   defaultDownloadDir,
			LogDir:        defaultLogDir,
			WhitelistPath: defaultWhitelistPath,
			HistoryDBPath: defaultHistoryDBPath,
		},
		Telegram: Telegram{
			PollTimeout: defaultPollTimeout,
		},
		Downloads: Downloads{
			MaxBatchSize: defaultMaxBatchSize,
			MaxFileBytes: defaultMaxFileBytes,
			FetchTimeout: defaultFetchTimeout,
			YtDlpBinary:  defaultYtDlpBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
