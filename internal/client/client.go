// ABOUTME: Controller-side client for the relay wire protocol
// ABOUTME: One connection per call: write request, read to EOF, parse the reply

package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/2389/coven-relay/internal/agent"
)

var (
	// ErrNoReply indicates the relay closed the connection without writing.
	ErrNoReply = errors.New("relay closed connection without reply")

	// ErrNotFound indicates the relay answered 404.
	ErrNotFound = errors.New("relay endpoint not found")

	// ErrUnsupportedValue indicates a value the relay cannot accept.
	ErrUnsupportedValue = errors.New("value cannot be sent to relay")

	// ErrMalformedReply indicates a reply that does not parse.
	ErrMalformedReply = errors.New("malformed relay reply")
)

const defaultDialTimeout = 5 * time.Second

// Client talks to one relay address.
type Client struct {
	addr        string
	dialTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithDialTimeout bounds connection setup.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// New creates a Client for addr (host:port).
func New(addr string, opts ...Option) *Client {
	c := &Client{
		addr:        addr,
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply is a parsed relay reply.
type Reply struct {
	StatusCode int
	Body       string
}

// Register announces identity ip with a display name.
func (c *Client) Register(ctx context.Context, ip, name string) error {
	return c.postStatus(ctx, "/register_pc2", "ip", ip, "name", name)
}

// List returns the relay's directory in registration order.
func (c *Client) List(ctx context.Context) ([]agent.Entry, error) {
	reply, err := c.Do(ctx, buildGet("/list_pc2s"))
	if err != nil {
		return nil, err
	}
	if err := expectOK(reply); err != nil {
		return nil, err
	}
	return decodeList(reply.Body)
}

// SendCommand stores command in target's mailbox, replacing any pending one.
func (c *Client) SendCommand(ctx context.Context, target, command string) error {
	return c.postStatus(ctx, "/send_command", "target", target, "command", command)
}

// GetCommand takes the pending command for ip. ok is false when none is waiting.
func (c *Client) GetCommand(ctx context.Context, ip string) (string, bool, error) {
	return c.getSlot(ctx, "/get_command/"+ip, "command")
}

// SendResponse stores output as sender's pending response. The relay drops
// output from unknown senders, which surfaces as ErrNoReply.
func (c *Client) SendResponse(ctx context.Context, sender, output string) error {
	return c.postStatus(ctx, "/send_response", "sender", sender, "output", output)
}

// GetResponse takes the pending response for ip. ok is false when none is waiting.
func (c *Client) GetResponse(ctx context.Context, ip string) (string, bool, error) {
	return c.getSlot(ctx, "/get_response/"+ip, "output")
}

func (c *Client) postStatus(ctx context.Context, path, k1, v1, k2, v2 string) error {
	body, err := buildBody(k1, v1, k2, v2)
	if err != nil {
		return err
	}
	reply, err := c.Do(ctx, buildPost(path, body))
	if err != nil {
		return err
	}
	return expectOK(reply)
}

func (c *Client) getSlot(ctx context.Context, path, key string) (string, bool, error) {
	if strings.ContainsAny(path, " \t\r\n") {
		return "", false, fmt.Errorf("%w: identity contains whitespace", ErrUnsupportedValue)
	}
	reply, err := c.Do(ctx, buildGet(path))
	if err != nil {
		return "", false, err
	}
	if err := expectOK(reply); err != nil {
		return "", false, err
	}
	return decodeSlot(reply.Body, key)
}

// Do sends a raw request and parses whatever the relay sends back.
func (c *Client) Do(ctx context.Context, raw []byte) (*Reply, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing relay: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write(raw); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoReply
	}
	return parseReply(data)
}

func expectOK(r *Reply) error {
	switch r.StatusCode {
	case 200:
		return nil
	case 404:
		return ErrNotFound
	default:
		return fmt.Errorf("unexpected relay status %d", r.StatusCode)
	}
}

func buildBody(k1, v1, k2, v2 string) (string, error) {
	for _, v := range []string{v1, v2} {
		if v == "" {
			return "", fmt.Errorf("%w: empty value", ErrUnsupportedValue)
		}
		if strings.Contains(v, `"`) {
			return "", fmt.Errorf("%w: contains a double quote", ErrUnsupportedValue)
		}
	}
	return fmt.Sprintf(`{ "%s": "%s", "%s": "%s" }`, k1, v1, k2, v2), nil
}

func buildPost(path, body string) []byte {
	return []byte(fmt.Sprintf(
		"POST %s HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		path, len(body), body,
	))
}

func buildGet(path string) []byte {
	return []byte("GET " + path + " HTTP/1.1\r\n\r\n")
}

// parseReply reads the status line, headers, and a Content-Length body.
func parseReply(data []byte) (*Reply, error) {
	br := bufio.NewReader(bytes.NewReader(data))

	status, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: no status line", ErrMalformedReply)
	}
	parts := strings.SplitN(strings.TrimRight(status, "\r\n"), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return nil, fmt.Errorf("%w: bad status line %q", ErrMalformedReply, status)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad status code %q", ErrMalformedReply, parts[1])
	}

	length := -1
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: headers not terminated", ErrMalformedReply)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, found := strings.Cut(line, ":")
		if found && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: bad content length %q", ErrMalformedReply, value)
			}
		}
	}

	body, _ := io.ReadAll(br)
	if length >= 0 {
		if len(body) < length {
			return nil, fmt.Errorf("%w: body shorter than content length", ErrMalformedReply)
		}
		body = body[:length]
	}
	return &Reply{StatusCode: code, Body: string(body)}, nil
}
