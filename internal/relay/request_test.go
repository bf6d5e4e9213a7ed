// ABOUTME: Tests for raw request parsing and body field extraction
// ABOUTME: Covers token limits, body location, and the fixed body shapes

package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		method string
		path   string
		body   string
	}{
		{"crlf body", "POST /x HTTP/1.1\r\nA: b\r\n\r\nhello", "POST", "/x", "hello"},
		{"lf body", "POST /x HTTP/1.1\nA: b\n\nhello", "POST", "/x", "hello"},
		{"lf framed value holds crlf pair", "POST /x HTTP/1.1\nHost: x\n\n{\"output\":\"x\r\n\r\ny\"}", "POST", "/x", "{\"output\":\"x\r\n\r\ny\"}"},
		{"crlf framed value holds lf pair", "POST /x HTTP/1.1\r\n\r\nx\n\ny", "POST", "/x", "x\n\ny"},
		{"no body", "GET /list_pc2s HTTP/1.1\r\n", "GET", "/list_pc2s", ""},
		{"leading whitespace", "  GET   /a", "GET", "/a", ""},
		{"nul cuts input", "GET /a\x00\r\n\r\nbody", "GET", "/a", ""},
		{"long method splits", "DELETEME /a", "DELETEM", "E", ""},
		{"empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parseRequest([]byte(tt.raw))
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.body, string(req.Body))
		})
	}
}

func TestParseRequest_PathTruncated(t *testing.T) {
	long := "/" + strings.Repeat("p", 200)
	req := parseRequest([]byte("GET " + long + " HTTP/1.1"))
	assert.Len(t, req.Path, maxPathLen)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		v1, v2 string
		ok     bool
	}{
		{"compact", `{"ip":"1.2.3.4","name":"A"}`, "1.2.3.4", "A", true},
		{"canonical", `{ "ip": "1.2.3.4", "name": "A B" }`, "1.2.3.4", "A B", true},
		{"newlines between tokens", "{\n  \"ip\":\n \"1.2.3.4\",\n  \"name\": \"A\"\n}", "1.2.3.4", "A", true},
		{"no closing brace needed", `{"ip":"1.2.3.4","name":"A"`, "1.2.3.4", "A", true},
		{"unterminated second value", `{"ip":"1.2.3.4","name":"A`, "1.2.3.4", "A", true},
		{"space before comma", `{"ip":"1.2.3.4" ,"name":"A"}`, "", "", false},
		{"empty name", `{"ip":"1.2.3.4","name":""}`, "", "", false},
		{"embedded quote splits value", `{"ip":"1.2.3.4","name":"say "hi""}`, "1.2.3.4", "say ", true},
		{"empty", ``, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v1, v2, ok := registerShape.extract([]byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.v1, v1)
			assert.Equal(t, tt.v2, v2)
		})
	}
}

func TestExtract_SecondValueTruncated(t *testing.T) {
	out := strings.Repeat("o", maxOutputLen+50)
	_, v2, ok := responseShape.extract([]byte(`{"sender":"s","output":"` + out + `"}`))
	assert.True(t, ok)
	assert.Len(t, v2, maxOutputLen)
}
