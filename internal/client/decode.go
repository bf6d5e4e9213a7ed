// ABOUTME: Decodes the fixed-shape bodies the relay replies with
// ABOUTME: Handles the flat directory object and the single-slot mailbox replies

package client

import (
	"fmt"
	"strings"

	"github.com/2389/coven-relay/internal/agent"
	"github.com/2389/coven-relay/internal/codec"
)

// decodeSlot parses {"<key>":null} or {"<key>":"<escaped>"}.
func decodeSlot(body, key string) (string, bool, error) {
	prefix := `{"` + key + `":`
	rest, found := strings.CutPrefix(body, prefix)
	if !found {
		return "", false, fmt.Errorf("%w: missing %q", ErrMalformedReply, key)
	}
	if rest == "null}" {
		return "", false, nil
	}
	if !strings.HasPrefix(rest, `"`) || !strings.HasSuffix(rest, `"}`) || len(rest) < 3 {
		return "", false, fmt.Errorf("%w: bad %s value", ErrMalformedReply, key)
	}
	return codec.Unescape(rest[1 : len(rest)-2]), true, nil
}

// decodeList parses {"name":"identity",...} keeping relay order.
func decodeList(body string) ([]agent.Entry, error) {
	s := strings.TrimSpace(body)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("%w: list is not an object", ErrMalformedReply)
	}
	s = s[1 : len(s)-1]

	entries := []agent.Entry{}
	for len(s) > 0 {
		name, rest, err := readQuoted(s)
		if err != nil {
			return nil, err
		}
		rest, found := strings.CutPrefix(rest, ":")
		if !found {
			return nil, fmt.Errorf("%w: expected ':' after %q", ErrMalformedReply, name)
		}
		ident, rest, err := readQuoted(rest)
		if err != nil {
			return nil, err
		}
		entries = append(entries, agent.Entry{DisplayName: name, Identity: ident})

		s = strings.TrimPrefix(rest, ",")
		if len(s) == len(rest) && s != "" {
			return nil, fmt.Errorf("%w: expected ',' between entries", ErrMalformedReply)
		}
	}
	return entries, nil
}

// readQuoted reads one "..." string honoring backslash escapes.
func readQuoted(s string) (value, rest string, err error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", fmt.Errorf("%w: expected string", ErrMalformedReply)
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return codec.Unescape(s[1:i]), s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("%w: unterminated string", ErrMalformedReply)
}
