package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.DBPath == "" {
		return errors.New("storage.db_path must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if len(c.Capture.Command) == 0 || strings.TrimSpace(c.Capture.Command[0]) == "" {
		return errors.New("capture.command must start with an executable")
	}
	if !strings.HasPrefix(c.Capture.ContentType, "audio/") {
		return fmt.Errorf("capture.content_type must be an audio type, got %q", c.Capture.ContentType)
	}
	if c.Capture.ChunkSize < 0 {
		return errors.New("capture.chunk_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
