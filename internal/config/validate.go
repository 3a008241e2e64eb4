package config

import (
	"errors"
	"fmt"

	"github.com/simonhull/mediasniff/internal/types"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateParse(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateParse() error {
	if c.Parse.MaxBytes < 0 {
		return errors.New("parse.max_bytes must be >= 0")
	}
	for _, f := range c.Parse.Formats {
		if !types.Format(f).Known() {
			return fmt.Errorf("parse.formats: unknown format %q", f)
		}
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
