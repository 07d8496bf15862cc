package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"lineage/internal/config"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/store"
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

// withStore opens the database for one command invocation.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

// logger builds a file-only logger so command output stays clean.
func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.LogDir == "" {
		return logging.NewNop()
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "lineage.log")
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: "json",
		Paths:  []string{logPath},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) grampsClient() (*gramps.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return gramps.New(cfg.Gramps, c.logger()), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
