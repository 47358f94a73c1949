package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sweepq/internal/core/app"
	"sweepq/internal/core/config"

	"github.com/joho/godotenv"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	baseDir    string
	configErr  error

	appOnce sync.Once
	app     *app.App
	appErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

// ensureConfig loads .env, then the config file. A missing default config
// file falls back to sweepq.example.toml and then to built-in defaults.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load .env", "error", err)
		}

		path := defaultConfigPath
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}

		cfg, err := config.Load(path)
		if err != nil && errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
			path = "./sweepq.example.toml"
			cfg, err = config.Load(path)
			if err != nil && errors.Is(err, fs.ErrNotExist) {
				slog.Debug("no config file, using defaults")
				cfg = config.DefaultConfig()
				config.ApplyEnvOverrides(cfg)
				path, err = "", nil
			}
		}
		if err != nil {
			c.configErr = err
			return
		}

		base, err := os.Getwd()
		if err != nil {
			c.configErr = err
			return
		}
		if path != "" {
			if abs, err := filepath.Abs(path); err == nil {
				base = filepath.Dir(abs)
			}
		}
		c.config = cfg
		c.baseDir = base
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureApp() (*app.App, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = app.New(cfg, c.baseDir)
	})
	return c.app, c.appErr
}

// withPlan builds the App and, when planPath is set, loads it into the queue.
func (c *commandContext) withPlan(planPath string, fn func(*app.App) error) error {
	a, err := c.ensureApp()
	if err != nil {
		return err
	}
	if strings.TrimSpace(planPath) != "" {
		if _, err := a.LoadPlan(planPath, true); err != nil {
			return err
		}
	}
	return fn(a)
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
