package config

const (
	defaultGitHubBaseURL        = "https://api.github.com"
	defaultGitHubMaxResults     = 500
	defaultGitHubPerPage        = 100
	defaultGitHubTimeoutSeconds = 30
	defaultGitHubUserAgent      = "ideascore/0.1"
	defaultCachePath            = "~/.cache/ideascore/corpus.db"
	defaultCacheTTLHours        = 24
	defaultReportPath           = "project_analysis.csv"
	defaultReportFormat         = "csv"
	defaultReportTopK           = 3
	defaultReportWarnBelow      = 40.0
	defaultServerBind           = "127.0.0.1:8080"
	defaultLogLevel             = "error"
	defaultLanguage             = "python"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		GitHub: GitHub{
			BaseURL:        defaultGitHubBaseURL,
			MaxResults:     defaultGitHubMaxResults,
			PerPage:        defaultGitHubPerPage,
			TimeoutSeconds: defaultGitHubTimeoutSeconds,
			UserAgent:      defaultGitHubUserAgent,
			Language:       defaultLanguage,
		},
		Cache: Cache{
			Enabled:  true,
			Path:     defaultCachePath,
			TTLHours: defaultCacheTTLHours,
		},
		Report: Report{
			Path:      defaultReportPath,
			Format:    defaultReportFormat,
			TopK:      defaultReportTopK,
			WarnBelow: defaultReportWarnBelow,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
