package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "wsldev.yaml"

// Load builds the configuration for a run.
//
// Order of precedence, lowest first: struct defaults, the YAML file,
// .env entries, WSLDEV_* environment variables. An empty path loads
// DefaultFileName if it exists and continues with defaults otherwise;
// an explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	if err := resolvePaths(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with only struct defaults applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	// #nosec G304 - config path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// Fields cleared by the file fall back to their defaults again.
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a .env file without overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv applies WSLDEV_* overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WSLDEV_WSL_BINARY"); v != "" {
		cfg.WSLBinary = v
	}
	if v := os.Getenv("WSLDEV_DISTRO"); v != "" {
		cfg.Distro.Name = v
	}
	if v := os.Getenv("WSLDEV_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("WSLDEV_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("WSLDEV_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("WSLDEV_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	cfg.Distro.WebDownload = parseBool("WSLDEV_WEB_DOWNLOAD", cfg.Distro.WebDownload)
	cfg.Skip.Font = parseBool("WSLDEV_SKIP_FONT", cfg.Skip.Font)
	cfg.Skip.Prompt = parseBool("WSLDEV_SKIP_PROMPT", cfg.Skip.Prompt)
	cfg.Skip.Terminal = parseBool("WSLDEV_SKIP_TERMINAL", cfg.Skip.Terminal)
	cfg.Skip.Editor = parseBool("WSLDEV_SKIP_EDITOR", cfg.Skip.Editor)
}
