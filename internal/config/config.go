// ABOUTME: Configuration loading for the lumen gateway client
// ABOUTME: Loads TOML config from XDG path with environment variable expansion

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrMissingToken indicates no auth token was supplied via config or the
// LUMEN_TOKEN environment variable. This is a configuration error, fatal at
// identify time, never retried as a transient gateway fault.
var ErrMissingToken = errors.New("auth token not configured (set auth.token or LUMEN_TOKEN)")

// Config is the complete client configuration.
type Config struct {
	Gateway GatewayConfig `toml:"gateway"`
	Auth    AuthConfig    `toml:"auth"`
	Journal JournalConfig `toml:"journal"`
	Logging LoggingConfig `toml:"logging"`
}

// GatewayConfig holds endpoint and identify parameters.
type GatewayConfig struct {
	// APIBase is the REST endpoint used to resolve the websocket URL.
	APIBase string `toml:"api_base"`
	// URL pins the websocket URL directly, skipping REST resolution.
	URL string `toml:"url"`
	// Intents is the event-subscription bitmask sent at identify.
	Intents int64 `toml:"intents"`
}

// AuthConfig holds the gateway bearer token.
type AuthConfig struct {
	Token string `toml:"token"`
}

// JournalConfig holds the attempt journal settings.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultPath returns the config file location.
// Priority: LUMEN_CONFIG env var > XDG_CONFIG_HOME/lumen/gateway.toml > ~/.config/lumen/gateway.toml
func DefaultPath() string {
	if envPath := os.Getenv("LUMEN_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "lumen", "gateway.toml")
}

// Load reads config from the given path, expanding environment variables.
// The auth token falls back to LUMEN_TOKEN when not set in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Auth.Token == "" {
		cfg.Auth.Token = os.Getenv("LUMEN_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Auth.Token == "" {
		return ErrMissingToken
	}

	if c.Gateway.APIBase == "" && c.Gateway.URL == "" {
		return fmt.Errorf("one of gateway.api_base or gateway.url is required")
	}
	if c.Gateway.APIBase != "" {
		if err := validateURL("gateway.api_base", c.Gateway.APIBase, "http", "https"); err != nil {
			return err
		}
	}
	if c.Gateway.URL != "" {
		if err := validateURL("gateway.url", c.Gateway.URL, "ws", "wss"); err != nil {
			return err
		}
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when journal is enabled")
	}

	return nil
}

// validateURL checks a URL field parses and uses one of the allowed schemes.
func validateURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid url: %w", field, err)
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("%s must use one of %v, got %q", field, schemes, u.Scheme)
}
