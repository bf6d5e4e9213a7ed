// ABOUTME: Parses the method, path, and body out of a raw relay request
// ABOUTME: Token limits and body location follow the fixed-buffer wire format

package relay

import "bytes"

const (
	maxMethodLen = 7
	maxPathLen   = 127
)

// request is the parsed form of one raw request.
type request struct {
	Method string
	Path   string
	Body   []byte
}

// parseRequest extracts the first two whitespace-delimited tokens and the
// bytes after the first blank line. Input stops at the first NUL byte.
func parseRequest(raw []byte) request {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}

	method, rest := scanToken(raw, maxMethodLen)
	path, _ := scanToken(rest, maxPathLen)

	return request{
		Method: string(method),
		Path:   string(path),
		Body:   findBody(raw),
	}
}

// scanToken skips leading whitespace and returns at most limit non-space
// bytes. A longer token is split: the remainder starts the next scan.
func scanToken(s []byte, limit int) (tok, rest []byte) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	for i < len(s) && !isSpace(s[i]) && i-start < limit {
		i++
	}
	return s[start:i], s[i:]
}

// findBody returns the bytes after the first blank line, whether it is
// CRLF or LF framed.
func findBody(raw []byte) []byte {
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return raw[crlf+4:]
	case lf >= 0:
		return raw[lf+2:]
	}
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
