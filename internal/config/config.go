// Package config loads the optional hcrun YAML file. The file supplies
// defaults (usually the ping key) so they do not have to appear in a crontab.
// Flags and environment variables take precedence over anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by hcrun.
const (
	EnvPingKey = "HEALTHCHECKS_PING_KEY"
	EnvBaseURL = "HEALTHCHECKS_BASE_URL"
	EnvConfig  = "HCRUN_CONFIG"
)

// Config holds the parsed config file. All fields are optional.
type Config struct {
	BaseURL   string `yaml:"base_url"`   // e.g. https://hc-ping.com
	PingKey   string `yaml:"ping_key"`   // project ping key used with --slug
	UserAgent string `yaml:"user_agent"` // custom client label
}

// DefaultPath returns $XDG_CONFIG_HOME/hcrun/config.yaml, or the platform
// equivalent. It returns "" when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hcrun", "config.yaml")
}

// Load reads the config file at path. An empty path means DefaultPath, and a
// missing default file yields an empty Config. A path given explicitly must
// exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
