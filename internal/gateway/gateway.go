// ABOUTME: Gateway orchestrator that wires directory, router, journal, and listener
// ABOUTME: Serves the relay over plain TCP or a Tailscale tsnet node

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/coven-relay/internal/agent"
	"github.com/2389/coven-relay/internal/config"
	"github.com/2389/coven-relay/internal/relay"
	"github.com/2389/coven-relay/internal/store"
)

// Gateway orchestrates the coven-relay server components.
type Gateway struct {
	config      *config.Config
	router      *relay.Router
	server      *ConnServer
	journal     *store.SQLiteJournal
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	// listener overrides listener setup; used by tests
	listener net.Listener
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithListener serves on ln instead of opening one from config.
func WithListener(ln net.Listener) Option {
	return func(g *Gateway) { g.listener = ln }
}

// New creates a Gateway from cfg. The journal, when enabled, is opened here.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gw := &Gateway{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(gw)
	}

	var sink relay.Journal
	if cfg.Journal.Enabled {
		j, err := store.NewSQLiteJournal(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		gw.journal = j
		sink = &journalSink{store: j, logger: logger.With("component", "journal")}
	}

	gw.router = relay.NewRouter(relay.RouterParams{
		Directory: agent.NewDirectory(cfg.Directory.Capacity),
		Journal:   sink,
		Logger:    logger.With("component", "router"),
	})

	gw.server = NewConnServer(ConnServerParams{
		Handler:     gw.router,
		BufferSize:  cfg.Server.BufferSize,
		Concurrent:  cfg.Server.Concurrent,
		ReadTimeout: cfg.Server.ReadTimeout,
		Logger:      logger.With("component", "server"),
	})

	return gw, nil
}

// Router exposes the relay router so callers can inspect directory state.
func (g *Gateway) Router() *relay.Router {
	return g.router
}

// Run opens the listener and serves until ctx is canceled.
// Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		_ = g.Shutdown()
		return err
	}

	serveErr := g.server.Serve(ctx, ln)
	g.logger.Info("relay stopped")

	shutdownErr := g.Shutdown()
	if serveErr != nil {
		return serveErr
	}
	return shutdownErr
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.listener != nil {
		return g.listener, nil
	}
	if g.config.Tailscale.Enabled {
		if g.config.Server.Addr != "" && g.config.Server.Addr != config.DefaultAddr {
			g.logger.Warn("server.addr is ignored when tailscale is enabled", "addr", g.config.Server.Addr)
		}
		return g.setupTailscaleListener(ctx)
	}

	ln, err := net.Listen("tcp", g.config.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on relay address: %w", err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "coven-relay", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and listens on the configured tailnet port.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	ln, err := g.tsnetServer.Listen("tcp", ":"+strconv.Itoa(tsCfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listening on tailscale port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown releases the tailnet node and the journal. Safe to call more
// than once.
func (g *Gateway) Shutdown() error {
	var errs []error
	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
		g.tsnetServer = nil
	}
	if g.journal != nil {
		errs = appendCloseError(errs, "journal close", g.journal.Close())
		g.journal = nil
	}
	return errors.Join(errs...)
}
