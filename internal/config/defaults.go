package config

const (
	defaultDataDir              = "~/.local/share/reelsync"
	defaultLogDir               = "~/.local/share/reelsync/logs"
	defaultTraktBaseURL         = "https://api.trakt.tv"
	defaultPlexWebURL           = "https://app.plex.tv/desktop"
	defaultPlexUserDataDir      = "~/.local/share/reelsync/browser"
	defaultSignInTimeoutSeconds = 600
	defaultStepTimeoutSeconds   = 15
	defaultSyncPageSize         = 100
	defaultDashboardBind        = "127.0.0.1:7515"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Trakt: Trakt{
			BaseURL: defaultTraktBaseURL,
		},
		Plex: Plex{
			WebURL:               defaultPlexWebURL,
			Headless:             false,
			UserDataDir:          defaultPlexUserDataDir,
			SignInTimeoutSeconds: defaultSignInTimeoutSeconds,
			StepTimeoutSeconds:   defaultStepTimeoutSeconds,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Sync: Sync{
			PageSize: defaultSyncPageSize,
		},
		Dashboard: Dashboard{
			Bind: defaultDashboardBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
