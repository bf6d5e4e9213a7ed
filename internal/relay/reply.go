// ABOUTME: Serializes relay replies as a status line, Content-Length, and body
// ABOUTME: Also renders the small JSON bodies each operation returns

package relay

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/2389/coven-relay/internal/agent"
	"github.com/2389/coven-relay/internal/codec"
)

// Escape budgets for values echoed back to callers.
const (
	commandEscapeSize = 512
	outputEscapeSize  = 4096
)

const (
	bodyRegistered     = `{"status":"ok"}`
	bodyCommandStored  = `{"status":"command stored"}`
	bodyResponseStored = `{"status":"stored"}`
	bodyNoCommand      = `{"command":null}`
	bodyNoOutput       = `{"output":null}`
	bodyNotFound       = "Not Found"
)

// buildReply renders a full reply. Content-Length is the exact byte length
// of body.
func buildReply(code int, body string) []byte {
	var b strings.Builder
	b.Grow(len(body) + 64)
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(code))
	b.WriteByte(' ')
	b.WriteString(http.StatusText(code))
	b.WriteString("\r\nContent-Length: ")
	b.WriteString(strconv.Itoa(len(body)))
	b.WriteString("\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func okReply(body string) []byte {
	return buildReply(http.StatusOK, body)
}

func notFoundReply() []byte {
	return buildReply(http.StatusNotFound, bodyNotFound)
}

// listBody renders entries as a flat {"name":"identity",...} object in
// directory order.
func listBody(entries []agent.Entry) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(codec.Quote(e.DisplayName))
		b.WriteByte(':')
		b.WriteString(codec.Quote(e.Identity))
	}
	b.WriteByte('}')
	return b.String()
}

func commandBody(cmd string) string {
	return `{"command":"` + codec.Escape(cmd, commandEscapeSize) + `"}`
}

func outputBody(out string) string {
	return `{"output":"` + codec.Escape(out, outputEscapeSize) + `"}`
}
