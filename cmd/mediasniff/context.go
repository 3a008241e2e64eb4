package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff"
	"github.com/simonhull/mediasniff/internal/config"
	"github.com/simonhull/mediasniff/internal/logging"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.logLevel != "" {
			cfg.Logging.Level = c.flags.logLevel
		}
		if c.flags.logFormat != "" {
			cfg.Logging.Format = c.flags.logFormat
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// loggerFor builds the process logger once, writing to the command's
// stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: cmd.ErrOrStderr(),
		})
	})
	return c.logger, c.loggerErr
}

// parseOptions maps the configuration onto library options. A non-empty
// formats list overrides the configured one.
func (c *commandContext) parseOptions(cmd *cobra.Command, formats []string, maxBytes int64) ([]mediasniff.Option, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return nil, err
	}

	var regOpts []mediasniff.RegistryOption
	if cfg.Parse.WebPFeatureScan {
		regOpts = append(regOpts, mediasniff.WithWebPFeatureScan())
	}
	reg, err := mediasniff.NewRegistry(regOpts...)
	if err != nil {
		return nil, err
	}

	selected := cfg.Formats()
	if len(formats) > 0 {
		selected, err = parseFormatList(formats)
		if err != nil {
			return nil, err
		}
	}
	if maxBytes < 0 {
		maxBytes = cfg.Parse.MaxBytes
	}

	opts := []mediasniff.Option{
		mediasniff.WithRegistry(reg),
		mediasniff.WithMaxBytes(maxBytes),
		mediasniff.WithLogger(logger),
	}
	if len(selected) > 0 {
		opts = append(opts, mediasniff.WithFormats(selected...))
	}
	return opts, nil
}

func parseFormatList(values []string) ([]mediasniff.Format, error) {
	var out []mediasniff.Format
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			f := mediasniff.Format(part)
			if !f.Known() {
				return nil, fmt.Errorf("unknown format %q", part)
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
