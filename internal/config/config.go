// Package config loads android-mcp settings. Precedence, lowest first:
// defaults, the YAML config file, ANDROID_MCP_* environment variables and
// finally command-line flags, which the cmd package applies on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Config holds runtime settings.
type Config struct {
	ADBPath       string        `yaml:"adb_path"`
	Timeout       time.Duration `yaml:"timeout"`
	Transport     string        `yaml:"transport"`
	Port          int           `yaml:"port"`
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	DefaultSerial string        `yaml:"default_serial"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout:   8 * time.Second,
		Transport: TransportStdio,
		Port:      8080,
		LogLevel:  "info",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/android-mcp/config.yaml, or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "android-mcp", "config.yaml")
}

// Load reads path over the defaults and applies the environment. An empty
// path means DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ANDROID_MCP_ADB_PATH"); ok && v != "" {
		c.ADBPath = v
	}
	if v, ok := lookup("ANDROID_MCP_TIMEOUT"); ok && v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("ANDROID_MCP_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v, ok := lookup("ANDROID_MCP_TRANSPORT"); ok && v != "" {
		c.Transport = v
	}
	if v, ok := lookup("ANDROID_MCP_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANDROID_MCP_PORT: %w", err)
		}
		c.Port = p
	}
	if v, ok := lookup("ANDROID_MCP_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("ANDROID_MCP_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ANDROID_MCP_LOG_JSON: %w", err)
		}
		c.LogJSON = b
	}
	// ANDROID_SERIAL is adb's own variable for the target device.
	if v, ok := lookup("ANDROID_SERIAL"); ok && v != "" {
		c.DefaultSerial = v
	}
	return nil
}

// ParseTimeout accepts a Go duration ("8s") or a bare number of
// milliseconds ("8000").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", c.Transport)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}
