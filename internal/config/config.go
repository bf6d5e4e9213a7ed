// ABOUTME: Configuration loading and parsing for coven-relay
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults used when a field is absent from the config file.
const (
	DefaultAddr       = ":5000"
	DefaultBufferSize = 8192
	DefaultCapacity   = 50
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"

	minBufferSize = 64
)

// Config represents the complete coven-relay configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Directory DirectoryConfig `yaml:"directory" toml:"directory"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Journal   JournalConfig   `yaml:"journal" toml:"journal"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the relay listener configuration
type ServerConfig struct {
	Addr       string `yaml:"addr" toml:"addr"`
	BufferSize int    `yaml:"buffer_size" toml:"buffer_size"` // single read is capped at buffer_size-1 bytes
	Concurrent bool   `yaml:"concurrent" toml:"concurrent"`   // one goroutine per connection instead of sequential

	ReadTimeout    time.Duration `yaml:"-" toml:"-"`
	ReadTimeoutRaw string        `yaml:"read_timeout" toml:"read_timeout"`
}

// DirectoryConfig holds agent directory limits
type DirectoryConfig struct {
	Capacity int `yaml:"capacity" toml:"capacity"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	Port      int    `yaml:"port" toml:"port"` // tailnet port; defaults to 5000
}

// JournalConfig holds the relay event journal configuration
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration that serves on DefaultAddr with no
// journal and no tailnet.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			BufferSize: DefaultBufferSize,
		},
		Directory: DirectoryConfig{
			Capacity: DefaultCapacity,
		},
		Tailscale: TailscaleConfig{
			Hostname: "coven-relay",
			Port:     5000,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Fields absent from the file keep their Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default() when the file does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Server address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required (or enable tailscale)")
	}
	if c.Server.BufferSize < minBufferSize {
		return fmt.Errorf("server.buffer_size must be at least %d, got %d", minBufferSize, c.Server.BufferSize)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative")
	}

	if c.Directory.Capacity <= 0 {
		return fmt.Errorf("directory.capacity must be positive, got %d", c.Directory.Capacity)
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Tailscale.Enabled && (c.Tailscale.Port <= 0 || c.Tailscale.Port > 65535) {
		return fmt.Errorf("tailscale.port out of range: %d", c.Tailscale.Port)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when journal is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Server.ReadTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Server.ReadTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing read_timeout %q: %w", cfg.Server.ReadTimeoutRaw, err)
		}
		cfg.Server.ReadTimeout = d
	}
	return nil
}
