package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeStorage() error {
	if value, ok := os.LookupEnv(EnvDBPath); ok && strings.TrimSpace(value) != "" {
		c.Storage.DBPath = value
	}
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		c.Storage.DBPath = defaultDBPath
	}
	var err error
	if c.Storage.DBPath, err = expandPath(strings.TrimSpace(c.Storage.DBPath)); err != nil {
		return fmt.Errorf("storage.db_path: %w", err)
	}
	c.Storage.SlotKey = strings.TrimSpace(c.Storage.SlotKey)
	if c.Storage.SlotKey == "" {
		c.Storage.SlotKey = defaultSlotKey
	}
	return nil
}

func (c *Config) normalizeCapture() {
	if len(c.Capture.Command) == 0 {
		c.Capture.Command = defaultCaptureCommand()
	}
	c.Capture.ContentType = strings.ToLower(strings.TrimSpace(c.Capture.ContentType))
	if c.Capture.ContentType == "" {
		c.Capture.ContentType = defaultContentType
	}
	c.Capture.Extension = strings.TrimPrefix(strings.TrimSpace(c.Capture.Extension), ".")
	if c.Capture.Extension == "" {
		c.Capture.Extension = defaultExtension
	}
	if c.Capture.ChunkSize == 0 {
		c.Capture.ChunkSize = defaultChunkSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
