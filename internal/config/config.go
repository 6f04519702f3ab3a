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

// Trakt contains credentials and endpoint configuration for the Trakt API.
type Trakt struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
}

// Plex contains settings for the browser-driven Plex web session.
type Plex struct {
	WebURL               string `toml:"web_url"`
	Headless             bool   `toml:"headless"`
	UserDataDir          string `toml:"user_data_dir"`
	SignInTimeoutSeconds int    `toml:"signin_timeout_seconds"`
	StepTimeoutSeconds   int    `toml:"step_timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Sync contains tuning for Trakt ingestion.
type Sync struct {
	PageSize int `toml:"page_size"`
}

// Mirror contains tuning for the Plex mirroring batch.
type Mirror struct {
	// StopAfterFirst mirrors a single record and stops, for verifying
	// selectors against a live session before running a full batch.
	StopAfterFirst bool `toml:"stop_after_first"`
}

// Dashboard contains settings for the HTTP dashboard server.
type Dashboard struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsync.
//
// Configuration sections by subsystem:
//   - Trakt: API credentials and base URL
//   - Plex: browser session settings for the UI mirror
//   - Paths: data and log directories
//   - Sync: history pagination tuning
//   - Mirror: push batch behavior
//   - Dashboard: HTTP API bind address
//   - Logging: log format and level
type Config struct {
	Trakt     Trakt     `toml:"trakt"`
	Plex      Plex      `toml:"plex"`
	Paths     Paths     `toml:"paths"`
	Sync      Sync      `toml:"sync"`
	Mirror    Mirror    `toml:"mirror"`
	Dashboard Dashboard `toml:"dashboard"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
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
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir, &c.Plex.UserDataDir} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	c.Plex.WebURL = strings.TrimRight(strings.TrimSpace(c.Plex.WebURL), "/")
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	c.Trakt.ClientSecret = strings.TrimSpace(c.Trakt.ClientSecret)
	if c.Trakt.ClientID == "" {
		c.Trakt.ClientID = strings.TrimSpace(os.Getenv("TRAKT_CLIENT_ID"))
	}
	if c.Trakt.ClientSecret == "" {
		c.Trakt.ClientSecret = strings.TrimSpace(os.Getenv("TRAKT_CLIENT_SECRET"))
	}
	return nil
}

// EnsureDirectories creates the data and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the reconciliation database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "reelsync.db")
}

// CredentialPath returns the location of the persisted Trakt credential.
func (c *Config) CredentialPath() string {
	return filepath.Join(c.Paths.DataDir, "trakt_token.json")
}

// SessionLockPath returns the lock file guarding the exclusive browser session.
func (c *Config) SessionLockPath() string {
	return filepath.Join(c.Paths.DataDir, "plex_session.lock")
}

// SignInTimeout returns the long wait allowed for interactive Plex sign-in.
func (c *Config) SignInTimeout() time.Duration {
	return time.Duration(c.Plex.SignInTimeoutSeconds) * time.Second
}

// StepTimeout returns the bounded wait applied to individual UI steps.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Plex.StepTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
