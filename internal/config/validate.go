package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var supportedCodecs = []string{"json", "protobuf"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateAvatar(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.RegistryFile) == "" {
		return errors.New("paths.registry_file must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	output := filepath.Clean(c.Paths.OutputDir)
	registry := filepath.Clean(c.Paths.RegistryFile)
	if output == registry {
		return errors.New("paths.output_dir must differ from paths.registry_file")
	}
	if c.Publish.RecreateOutputDir && strings.HasPrefix(registry, output+string(filepath.Separator)) {
		return errors.New("publish.recreate_output_dir would delete paths.registry_file, which lives inside paths.output_dir")
	}
	return nil
}

func (c *Config) validatePublish() error {
	for _, name := range supportedCodecs {
		if c.Publish.Codec == name {
			return nil
		}
	}
	return fmt.Errorf("publish.codec must be one of %s, got %q", strings.Join(supportedCodecs, ", "), c.Publish.Codec)
}

func (c *Config) validateAvatar() error {
	parsed, err := url.Parse(c.Avatar.ServiceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("avatar.service_url must be an absolute URL, got %q", c.Avatar.ServiceURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
}
