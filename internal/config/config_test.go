// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "relay.yaml", `
server:
  addr: "127.0.0.1:6000"
  buffer_size: 4096
  concurrent: true
  read_timeout: "5s"

directory:
  capacity: 10

journal:
  enabled: true
  path: "./journal.db"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:6000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:6000")
	}
	if cfg.Server.BufferSize != 4096 {
		t.Errorf("Server.BufferSize = %d, want 4096", cfg.Server.BufferSize)
	}
	if !cfg.Server.Concurrent {
		t.Error("Server.Concurrent = false, want true")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}
	if cfg.Directory.Capacity != 10 {
		t.Errorf("Directory.Capacity = %d, want 10", cfg.Directory.Capacity)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "./journal.db" {
		t.Errorf("Journal = %+v, want enabled at ./journal.db", cfg.Journal)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "relay.toml", `
[server]
addr = "0.0.0.0:5001"
read_timeout = "250ms"

[directory]
capacity = 3

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:5001" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "0.0.0.0:5001")
	}
	if cfg.Server.ReadTimeout != 250*time.Millisecond {
		t.Errorf("Server.ReadTimeout = %v, want 250ms", cfg.Server.ReadTimeout)
	}
	if cfg.Directory.Capacity != 3 {
		t.Errorf("Directory.Capacity = %d, want 3", cfg.Directory.Capacity)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	// untouched fields keep defaults
	if cfg.Server.BufferSize != DefaultBufferSize {
		t.Errorf("Server.BufferSize = %d, want default %d", cfg.Server.BufferSize, DefaultBufferSize)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging.Format = %q, want default %q", cfg.Logging.Format, DefaultLogFormat)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "relay.yaml", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Server != want.Server {
		t.Errorf("Server = %+v, want %+v", cfg.Server, want.Server)
	}
	if cfg.Directory.Capacity != DefaultCapacity {
		t.Errorf("Directory.Capacity = %d, want %d", cfg.Directory.Capacity, DefaultCapacity)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want false by default")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
}

func TestLoadOrDefault_InvalidFileStillFails(t *testing.T) {
	path := writeConfig(t, "relay.yaml", "server: [not, a, map")
	if _, err := LoadOrDefault(path); err == nil {
		t.Fatal("LoadOrDefault() expected error for invalid YAML")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_RELAY_ADDR", "127.0.0.1:7777")
	t.Setenv("TEST_TS_KEY", "tskey-from-env")
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	path := writeConfig(t, "relay.yaml", `
server:
  addr: "${TEST_RELAY_ADDR}"
tailscale:
  auth_key: "${TEST_TS_KEY}"
  state_dir: "${UNSET_VAR_FOR_TEST}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7777" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:7777")
	}
	if cfg.Tailscale.AuthKey != "tskey-from-env" {
		t.Errorf("Tailscale.AuthKey = %q, want %q", cfg.Tailscale.AuthKey, "tskey-from-env")
	}
	if cfg.Tailscale.StateDir != "" {
		t.Errorf("Tailscale.StateDir = %q, want empty string for unset env var", cfg.Tailscale.StateDir)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "relay.yaml", `
server:
  read_timeout: "soon"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "read_timeout") {
		t.Errorf("error = %v, want mention of read_timeout", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/relay.yaml"); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"empty addr with tailscale", func(c *Config) { c.Server.Addr = ""; c.Tailscale.Enabled = true }, ""},
		{"tiny buffer", func(c *Config) { c.Server.BufferSize = 10 }, "buffer_size"},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "read_timeout"},
		{"zero capacity", func(c *Config) { c.Directory.Capacity = 0 }, "capacity"},
		{"tailscale without hostname", func(c *Config) { c.Tailscale.Enabled = true; c.Tailscale.Hostname = "" }, "tailscale.hostname"},
		{"tailscale bad port", func(c *Config) { c.Tailscale.Enabled = true; c.Tailscale.Port = 70000 }, "tailscale.port"},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true }, "journal.path"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
