// ABOUTME: Controller subcommands that talk to a running relay or read its journal
// ABOUTME: Includes the small flag parser shared by the journal command

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/coven-relay/internal/client"
	"github.com/2389/coven-relay/internal/config"
	"github.com/2389/coven-relay/internal/store"
)

// requestTimeout bounds each controller round trip.
const requestTimeout = 10 * time.Second

// clientAddr returns the relay address controllers dial.
// Priority: COVEN_RELAY_ADDR env var > tailscale hostname:port when the relay
// serves on a tailnet > server.addr from config.
// A bare ":port" is dialed on loopback.
func clientAddr(cfg *config.Config) string {
	addr := os.Getenv("COVEN_RELAY_ADDR")
	if addr == "" && cfg.Tailscale.Enabled {
		addr = net.JoinHostPort(cfg.Tailscale.Hostname, strconv.Itoa(cfg.Tailscale.Port))
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return addr
}

func newClient() (*client.Client, error) {
	cfg, err := config.LoadOrDefault(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return client.New(clientAddr(cfg)), nil
}

func runAgents(ctx context.Context) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	entries, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("listing agents: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("no agents registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIDENTITY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.DisplayName, e.Identity)
	}
	return w.Flush()
}

func runSend(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: coven-relay send <target> <command>")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := c.SendCommand(ctx, args[0], args[1]); err != nil {
		if errors.Is(err, client.ErrNoReply) {
			return fmt.Errorf("relay did not accept the command (directory full?): %w", err)
		}
		return fmt.Errorf("sending command: %w", err)
	}

	color.New(color.FgGreen).Printf("  ✓ Command queued for %s\n", args[0])
	return nil
}

func runOutput(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: coven-relay output <identity>")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out, ok, err := c.GetResponse(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching output: %w", err)
	}
	if !ok {
		color.New(color.FgHiBlack).Println("no output pending")
		return nil
	}
	fmt.Println(out)
	return nil
}

// journalArgs holds the parsed flags of the journal command.
type journalArgs struct {
	filter store.Filter
}

// parseJournalArgs supports both "--flag value" and "--flag=value" forms.
func parseJournalArgs(args []string) (journalArgs, error) {
	var ja journalArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--limit", "--action", "--identity":
		default:
			if strings.HasPrefix(arg, "-") {
				return ja, fmt.Errorf("unknown flag: %s", arg)
			}
			return ja, fmt.Errorf("unexpected argument: %s", arg)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return ja, fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}

		switch name {
		case "--limit":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return ja, fmt.Errorf("--limit must be a positive integer, got %q", value)
			}
			ja.filter.Limit = n
		case "--action":
			ja.filter.Action = value
		case "--identity":
			ja.filter.Identity = value
		}
	}
	return ja, nil
}

func runJournal(ctx context.Context, args []string) error {
	ja, err := parseJournalArgs(args)
	if err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path not configured in %s", configPath)
	}
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return fmt.Errorf("journal not found: %w", err)
	}

	j, err := store.NewSQLiteJournal(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	entries, err := j.List(ctx, ja.filter)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("no journal entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tIDENTITY\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Identity, e.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total, err := j.Count(ctx, ja.filter)
	if err != nil {
		return fmt.Errorf("counting journal entries: %w", err)
	}
	color.New(color.FgHiBlack).Printf("\n%d shown, %d matching\n", len(entries), total)
	return nil
}
