package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jim60105/subx-cli-sub001/internal/config"
	"github.com/jim60105/subx-cli-sub001/internal/logging"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/transcode"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
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
		if err := cfg.Validate(); err != nil {
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			LogDir: cfg.Paths.LogDir,
		})
	})
	return c.logger, c.loggerErr
}

// newEngine builds the synchronization engine from the loaded
// configuration.
func (c *commandContext) newEngine() (*syncer.Engine, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	transcoder := transcode.NewTranscoder(cfg.Tools.FFmpegBin, cfg.Tools.FFprobeBin, cfg.Paths.WorkDir, logger)
	opts := []syncer.Option{}
	if cfg.Sync.TimeoutSeconds > 0 {
		opts = append(opts, syncer.WithStageTimeout(time.Duration(cfg.Sync.TimeoutSeconds)*time.Second))
	}
	return syncer.NewEngine(transcoder, logger, opts...), cfg, nil
}
