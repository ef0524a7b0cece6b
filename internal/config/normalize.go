package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePublish()
	c.normalizeAvatar()
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = defaultDebounceMS
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

// applyEnvironment replaces path defaults with ARTISTDB_* variables. It runs
// before the config file is decoded, so explicit file values still win.
func (c *Config) applyEnvironment() {
	for key, target := range map[string]*string{
		"ARTISTDB_REGISTRY_FILE": &c.Paths.RegistryFile,
		"ARTISTDB_OUTPUT_DIR":    &c.Paths.OutputDir,
		"ARTISTDB_STATE_DIR":     &c.Paths.StateDir,
	} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.RegistryFile, err = expandPath(c.Paths.RegistryFile); err != nil {
		return fmt.Errorf("paths.registry_file: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.Codec = strings.ToLower(strings.TrimSpace(c.Publish.Codec))
	if c.Publish.Codec == "" {
		c.Publish.Codec = defaultCodec
	}
	if c.Publish.SaveDelayMS < 0 {
		c.Publish.SaveDelayMS = 0
	}
	if c.Publish.Workers < 0 {
		c.Publish.Workers = 0
	}
}

func (c *Config) normalizeAvatar() {
	c.Avatar.ServiceURL = strings.TrimRight(strings.TrimSpace(c.Avatar.ServiceURL), "/")
	if c.Avatar.ServiceURL == "" {
		c.Avatar.ServiceURL = defaultAvatarURL
	}
	if c.Avatar.Size <= 0 {
		c.Avatar.Size = defaultAvatarSize
	}
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
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
