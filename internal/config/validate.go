package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTrakt(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTrakt() error {
	if c.Trakt.ClientID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsync/config.toml"
		}
		return fmt.Errorf("trakt.client_id is required. Set TRAKT_CLIENT_ID env var or edit %s (create with 'reelsync config init')", defaultPath)
	}
	if c.Trakt.ClientSecret == "" {
		return errors.New("trakt.client_secret is required (or set TRAKT_CLIENT_SECRET)")
	}
	if !strings.HasPrefix(c.Trakt.BaseURL, "http") {
		return fmt.Errorf("trakt.base_url %q must be an http(s) URL", c.Trakt.BaseURL)
	}
	return nil
}

func (c *Config) validatePlex() error {
	if !strings.HasPrefix(c.Plex.WebURL, "http") {
		return fmt.Errorf("plex.web_url %q must be an http(s) URL", c.Plex.WebURL)
	}
	if c.Plex.SignInTimeoutSeconds <= 0 {
		return errors.New("plex.signin_timeout_seconds must be positive")
	}
	if c.Plex.StepTimeoutSeconds <= 0 {
		return errors.New("plex.step_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.PageSize <= 0 || c.Sync.PageSize > 1000 {
		return errors.New("sync.page_size must be between 1 and 1000")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}
