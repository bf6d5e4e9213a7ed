// ABOUTME: Tests for CLI helpers: config path resolution, client address, flag parsing, logging
// ABOUTME: Subcommands that need a running relay are covered by the gateway and client tests

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/2389/coven-relay/internal/config"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("COVEN_RELAY_CONFIG", "/etc/coven/relay.toml")
	assert.Equal(t, "/etc/coven/relay.toml", getConfigPath())

	t.Setenv("COVEN_RELAY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "coven", "relay.yaml"), getConfigPath())
}

func TestClientAddr(t *testing.T) {
	cfg := config.Default()

	t.Setenv("COVEN_RELAY_ADDR", "")
	assert.Equal(t, "127.0.0.1:5000", clientAddr(cfg))

	cfg.Server.Addr = "relay.internal:7000"
	assert.Equal(t, "relay.internal:7000", clientAddr(cfg))

	cfg.Tailscale.Enabled = true
	cfg.Tailscale.Hostname = "coven-relay"
	cfg.Tailscale.Port = 6000
	assert.Equal(t, "coven-relay:6000", clientAddr(cfg))

	t.Setenv("COVEN_RELAY_ADDR", "10.1.2.3:5000")
	assert.Equal(t, "10.1.2.3:5000", clientAddr(cfg))
}

func TestParseJournalArgs(t *testing.T) {
	ja, err := parseJournalArgs([]string{"--limit", "5", "--action=registered", "--identity", "10.0.0.5"})
	require.NoError(t, err)
	assert.Equal(t, 5, ja.filter.Limit)
	assert.Equal(t, "registered", ja.filter.Action)
	assert.Equal(t, "10.0.0.5", ja.filter.Identity)

	ja, err = parseJournalArgs(nil)
	require.NoError(t, err)
	assert.Zero(t, ja.filter.Limit)

	for _, bad := range [][]string{
		{"--limit"},
		{"--limit", "zero"},
		{"--limit=-1"},
		{"--verbose"},
		{"stray"},
	} {
		_, err := parseJournalArgs(bad)
		assert.Error(t, err, "args %v", bad)
	}
}

func TestDefaultConfigIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	var parsed config.Config
	require.NoError(t, yaml.Unmarshal([]byte(defaultConfig(path)), &parsed))
	assert.Equal(t, config.DefaultAddr, parsed.Server.Addr)
	assert.Equal(t, config.DefaultCapacity, parsed.Directory.Capacity)
	assert.Equal(t, path, parsed.Journal.Path)
	assert.False(t, parsed.Journal.Enabled)
}

func TestSetupLogger_ColorHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	logger.Debug("hidden")
	logger.With("component", "router").WithGroup("req").Info("request handled", "path", "/list_pc2s")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF request handled")
	assert.Contains(t, out, "component=router")
	assert.Contains(t, out, "req.path=/list_pc2s")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("relay stopped")
	assert.Contains(t, buf.String(), `"msg":"relay stopped"`)
}
