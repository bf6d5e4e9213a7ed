// ABOUTME: Entry point for coven-relay, the command relay between controllers and agents
// ABOUTME: Serves the relay and provides controller subcommands that talk to a running relay

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/coven-relay/internal/config"
	"github.com/2389/coven-relay/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                                 _
  ___ _____   _____ _ __        _ __ ___| | __ _ _   _
 / __/ _ \ \ / / _ \ '_ \ _____| '__/ _ \ |/ _' | | | |
| (_| (_) \ V /  __/ | | |_____| | |  __/ | (_| | |_| |
 \___\___/ \_/ \___|_| |_|     |_|  \___|_|\__,_|\__, |
                                                 |___/
`

// getConfigPath returns the path to the relay config file.
// Priority: COVEN_RELAY_CONFIG env var > XDG_CONFIG_HOME/coven/relay.yaml > ~/.config/coven/relay.yaml
func getConfigPath() string {
	if envPath := os.Getenv("COVEN_RELAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "relay.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "coven", "relay.yaml")
}

// getDataPath returns the path to the coven data directory.
// Priority: XDG_DATA_HOME/coven > ~/.local/share/coven
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "coven")
}

func usage() {
	fmt.Println("Usage: coven-relay <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                       Start the relay server")
	fmt.Println("  init [--force]              Write a default config file")
	fmt.Println("  agents                      List registered agents")
	fmt.Println("  send <target> <command>     Queue a command for an agent")
	fmt.Println("  output <identity>           Collect an agent's pending output")
	fmt.Println("  journal [--limit N] [--action A] [--identity I]")
	fmt.Println("                              Show recent relay events")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(args)
	case "agents":
		err = runAgents(ctx)
	case "send":
		err = runSend(ctx, args)
	case "output":
		err = runOutput(ctx, args)
	case "journal":
		err = runJournal(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stdout)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Printf("%s:%d", cfg.Tailscale.Hostname, cfg.Tailscale.Port)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("Listen:    %s\n", cfg.Server.Addr)
	}
	green.Print("    ▶ ")
	fmt.Printf("Agents:    up to %d\n", cfg.Directory.Capacity)
	green.Print("    ▶ ")
	if cfg.Server.Concurrent {
		fmt.Println("Mode:      concurrent")
	} else {
		fmt.Print("Mode:      ")
		yellow.Println("sequential")
	}
	if cfg.Journal.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Journal:   %s\n", cfg.Journal.Path)
	}
	fmt.Println()

	logger.Info("starting coven-relay",
		"config", configPath,
		"addr", cfg.Server.Addr,
		"tailscale", cfg.Tailscale.Enabled,
		"capacity", cfg.Directory.Capacity,
		"concurrent", cfg.Server.Concurrent,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	runErr := gw.Run(ctx)

	// records live only in memory, so report what is lost at exit
	known := gw.Router().Snapshot()
	logger.Info("agents known at exit", "count", len(known))
	for _, e := range known {
		logger.Debug("agent", "name", e.DisplayName, "identity", e.Identity)
	}
	return runErr
}

// defaultConfig renders the config file written by init.
func defaultConfig(journalPath string) string {
	return fmt.Sprintf(`# coven-relay configuration
# Generated by coven-relay init

server:
  addr: "%s"
  buffer_size: %d
  concurrent: false
  # read_timeout: "10s"

directory:
  capacity: %d

tailscale:
  enabled: false
  hostname: "coven-relay"
  port: 5000
  # auth_key: "${TS_AUTHKEY}"

journal:
  enabled: false
  path: "%s"

logging:
  level: "%s"
  format: "%s"
`, config.DefaultAddr, config.DefaultBufferSize, config.DefaultCapacity,
		journalPath, config.DefaultLogLevel, config.DefaultLogFormat)
}

func runInit(args []string) error {
	force := false
	for _, arg := range args {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	journalPath := filepath.Join(getDataPath(), "relay.db")
	if err := os.WriteFile(configPath, []byte(defaultConfig(journalPath)), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created config: %s\n", configPath)
	fmt.Println("\nTo start the relay:")
	fmt.Println("  coven-relay serve")
	return nil
}
