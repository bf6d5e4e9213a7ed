// Package config handles configuration loading for coven-relay.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every field has a default, so an empty file (or no file at all,
// via LoadOrDefault) yields a relay listening on :5000.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_RELAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/coven/relay.yaml
//  3. ~/.config/coven/relay.yaml
//
// A path ending in .toml is decoded with BurntSushi/toml; anything else is
// decoded as YAML.
//
// # Environment Variable Expansion
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	server:
//	  addr: ":5000"
//	  buffer_size: 8192     # one read per connection, capped at buffer_size-1
//	  concurrent: false     # true handles each connection on its own goroutine
//	  read_timeout: ""      # e.g. "5s"; empty means no deadline
//
//	directory:
//	  capacity: 50          # new identities are refused once full
//
//	tailscale:
//	  enabled: false
//	  hostname: "coven-relay"
//	  auth_key: "${TS_AUTHKEY}"
//	  state_dir: ""
//	  ephemeral: false
//	  port: 5000
//
//	journal:
//	  enabled: false
//	  path: "/var/lib/coven/relay-journal.db"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
