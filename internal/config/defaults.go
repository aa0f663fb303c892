package config

const (
	defaultRootDir             = "."
	defaultDoneDirName         = "_deployed"
	defaultLogDir              = "~/.local/share/shipit/logs"
	defaultHistoryDB           = "~/.local/share/shipit/history.db"
	defaultSidecarName         = ".shipit.toml"
	defaultGitHubBinary        = "gh"
	defaultGitBinary           = "git"
	defaultVisibility          = "private"
	defaultCommitMessage       = "Initial commit"
	defaultCreateAttempts      = 5
	defaultVercelBinary        = "vercel"
	defaultNetlifyBinary       = "netlify"
	defaultNetlifyPublishDir   = "."
	defaultRelocationAttempts  = 10
	defaultRelocationDelay     = 3
	defaultSettleDelay         = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogMaxSizeMB        = 10
	defaultLogMaxBackups       = 5
	defaultLogMaxAgeDays       = 30
	defaultGitHubBranchPrimary = "main"
	defaultGitHubBranchLegacy  = "master"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RootDir:     defaultRootDir,
			DoneDirName: defaultDoneDirName,
			LogDir:      defaultLogDir,
			HistoryDB:   defaultHistoryDB,
		},
		Record: Record{
			SidecarName: defaultSidecarName,
		},
		GitHub: GitHub{
			Binary:         defaultGitHubBinary,
			GitBinary:      defaultGitBinary,
			Visibility:     defaultVisibility,
			CommitMessage:  defaultCommitMessage,
			Branches:       []string{defaultGitHubBranchPrimary, defaultGitHubBranchLegacy},
			CreateAttempts: defaultCreateAttempts,
		},
		Vercel: Vercel{
			Enabled: true,
			Binary:  defaultVercelBinary,
		},
		Netlify: Netlify{
			Enabled:    true,
			Binary:     defaultNetlifyBinary,
			PublishDir: defaultNetlifyPublishDir,
		},
		Relocation: Relocation{
			Enabled:           true,
			Attempts:          defaultRelocationAttempts,
			RetryDelaySeconds: defaultRelocationDelay,
			SettleDelaySecs:   defaultSettleDelay,
			KillProcesses:     []string{"node", "esbuild"},
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		History: History{
			Enabled: true,
		},
	}
}
