package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsync/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[trakt]
client_id = "cid"
client_secret = "secret"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Trakt.BaseURL != "https://api.trakt.tv" {
		t.Errorf("unexpected trakt base URL: %s", cfg.Trakt.BaseURL)
	}
	if cfg.Sync.PageSize != 100 {
		t.Errorf("expected default page size 100, got %d", cfg.Sync.PageSize)
	}
	if cfg.Plex.StepTimeoutSeconds != 15 {
		t.Errorf("expected default step timeout, got %d", cfg.Plex.StepTimeoutSeconds)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Errorf("data dir not expanded: %s", cfg.Paths.DataDir)
	}
}

func TestLoadRequiresTraktCredentials(t *testing.T) {
	t.Setenv("TRAKT_CLIENT_ID", "")
	t.Setenv("TRAKT_CLIENT_SECRET", "")
	path := writeConfig(t, "")

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing trakt credentials")
	}
	if !strings.Contains(err.Error(), "trakt.client_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("TRAKT_CLIENT_ID", "env-id")
	t.Setenv("TRAKT_CLIENT_SECRET", "env-secret")
	path := writeConfig(t, "")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trakt.ClientID != "env-id" || cfg.Trakt.ClientSecret != "env-secret" {
		t.Fatalf("env credentials not applied: %#v", cfg.Trakt)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		keyword string
	}{
		{"zero page size", func(c *config.Config) { c.Sync.PageSize = 0 }, "page_size"},
		{"bad plex url", func(c *config.Config) { c.Plex.WebURL = "ftp://nope" }, "plex.web_url"},
		{"zero step timeout", func(c *config.Config) { c.Plex.StepTimeoutSeconds = 0 }, "step_timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Trakt.ClientID = "cid"
			cfg.Trakt.ClientSecret = "secret"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("error %q does not mention %q", err, tc.keyword)
			}
		})
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	t.Setenv("TRAKT_CLIENT_ID", "cid")
	t.Setenv("TRAKT_CLIENT_SECRET", "secret")
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
