package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// GitHub contains settings for the repository search client.
type GitHub struct {
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	MaxResults     int    `toml:"max_results"`
	PerPage        int    `toml:"per_page"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Cache contains settings for the on-disk corpus cache.
type Cache struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// Report contains settings for the saved analysis report.
type Report struct {
	Path      string  `toml:"path"`
	Format    string  `toml:"format"`
	TopK      int     `toml:"top_k"`
	WarnBelow float64 `toml:"warn_below"`
}

// Server contains settings for the web front end.
type Server struct {
	Bind       string `toml:"bind"`
	ReportPath string `toml:"report_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for ideascore.
type Config struct {
	GitHub  GitHub  `toml:"github"`
	Cache   Cache   `toml:"cache"`
	Report  Report  `toml:"report"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ideascore/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are used instead. Load returns the resolved path and
// whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	if c.GitHub.Token == "" {
		c.GitHub.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}
	c.GitHub.BaseURL = strings.TrimRight(strings.TrimSpace(c.GitHub.BaseURL), "/")
	c.GitHub.Language = strings.TrimSpace(c.GitHub.Language)
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Report.Path, err = expandPath(c.Report.Path); err != nil {
		return fmt.Errorf("report.path: %w", err)
	}
	if c.Server.ReportPath, err = expandPath(c.Server.ReportPath); err != nil {
		return fmt.Errorf("server.report_path: %w", err)
	}
	return nil
}

// Timeout returns the GitHub request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.GitHub.TimeoutSeconds) * time.Second
}

// CacheTTL returns the corpus cache expiry; zero disables expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	return filepath.Clean(pathValue), nil
}

// ExpandPath expands a leading "~" and cleans the path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path, creating parent
// directories. An existing file is never overwritten.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if expanded == "" {
		return errors.New("config path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	file, err := os.OpenFile(expanded, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(sampleConfig); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
