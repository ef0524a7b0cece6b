package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	RegistryFile string `toml:"registry_file"`
	OutputDir    string `toml:"output_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Publish contains artifact output settings.
type Publish struct {
	Codec string `toml:"codec"`
	// SaveDelayMS is the pause between publishing artifacts and rewriting
	// the source registry.
	SaveDelayMS       int  `toml:"save_delay_ms"`
	RecreateOutputDir bool `toml:"recreate_output_dir"`
	Workers           int  `toml:"workers"`
	BackupOnRewrite   bool `toml:"backup_on_rewrite"`
}

// Avatar contains the third-party avatar service settings.
type Avatar struct {
	ServiceURL string `toml:"service_url"`
	Size       int    `toml:"size"`
}

// Watch contains file watch settings.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Metrics contains the node_exporter textfile output location. Empty disables it.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for artistdb.
//
// Configuration sections by subsystem:
//   - Paths: registry source, artifact output, state and log directories
//   - Publish: codec, output directory handling, rewrite behaviour
//   - Avatar: avatar service used for handle-derived avatars
//   - Watch: file watch debounce
//   - Metrics: prometheus textfile location
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Publish Publish `toml:"publish"`
	Avatar  Avatar  `toml:"avatar"`
	Watch   Watch   `toml:"watch"`
	Metrics Metrics `toml:"metrics"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load resolves the config file (see resolveConfigPath), layers it over the
// defaults and ARTISTDB_* environment overrides, then normalizes and
// validates the result. It also returns the resolved path and whether that
// file existed; a missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	cfg.applyEnvironment()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, resolvedPath, true, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, exists, err
	}
	return &cfg, resolvedPath, exists, nil
}

// decodeFile strictly decodes path into cfg; unknown keys are rejected so
// typos do not silently fall back to defaults.
func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	err = toml.NewDecoder(file).DisallowUnknownFields().Decode(cfg)
	var strict *toml.StrictMissingError
	var decodeErr *toml.DecodeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: %s", path, strings.TrimSpace(strict.String()))
	case errors.As(err, &decodeErr):
		row, col := decodeErr.Position()
		return fmt.Errorf("parse config %s: line %d, column %d: %w", path, row, col, err)
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
}

// resolveConfigPath returns the file to load and whether it exists. An
// explicit path is used as given; otherwise the user config and then
// ./artistdb.toml are tried, falling back to the (missing) user config path.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	candidates := []string{defaultConfigPath, projectConfigName}
	resolved := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if ok, _ := isFile(expanded); ok {
			return expanded, true, nil
		}
		resolved = append(resolved, expanded)
	}
	return resolved[0], false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

// EnsureDirectories creates the state and log directories. The output
// directory is left to the publisher so a missing one can be detected.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the run history database location.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "state.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "artistdb.lock")
}

// SaveDelay returns the publish-to-rewrite pause as a duration.
func (c *Config) SaveDelay() time.Duration {
	return time.Duration(c.Publish.SaveDelayMS) * time.Millisecond
}

// Debounce returns the watch debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// expandPath resolves a leading "~" and returns a clean absolute path.
// Empty input stays empty so optional paths can be left unset.
func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	absolute, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
