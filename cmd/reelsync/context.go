package main

import (
	"context"
	"strings"
	"sync"

	"log/slog"

	"github.com/spf13/cobra"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/store"
	"reelsync/internal/syncer"
	"reelsync/internal/trakt"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return slog.Default()
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return slog.Default()
	}
	return logger
}

// withOrchestrator opens the store, wires the orchestrator, and tears both
// down after fn returns.
func (c *commandContext) withOrchestrator(cmd *cobra.Command, fn func(ctx context.Context, orch *syncer.Orchestrator, st *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.logger()

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := trakt.NewTokenManager(cfg, logger, trakt.WithNotify(deviceCodePrinter(cmd)))
	if err != nil {
		return err
	}

	orch := syncer.New(cfg, st, tokens, logger)
	return fn(cmd.Context(), orch, st)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
