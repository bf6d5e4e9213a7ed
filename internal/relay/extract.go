// ABOUTME: Fixed-shape field extraction for relay request bodies
// ABOUTME: Matches exactly two quoted string fields; no general JSON parsing

package relay

// Value limits carried by the wire format. Identity-like first fields must
// fit; second fields are truncated.
const (
	maxIdentityLen = 31
	maxNameLen     = 63
	maxCommandLen  = 255
	maxOutputLen   = 2047
)

// bodyShape describes the one body layout an endpoint accepts:
//
//	{ "<first>": "<v1>", "<second>": "<v2>" }
//
// Whitespace runs (including empty ones) are accepted where the layout shows a
// space; every other byte must match.
type bodyShape struct {
	first     string
	firstMax  int
	second    string
	secondMax int
}

var (
	registerShape = bodyShape{first: "ip", firstMax: maxIdentityLen, second: "name", secondMax: maxNameLen}
	commandShape  = bodyShape{first: "target", firstMax: maxIdentityLen, second: "command", secondMax: maxCommandLen}
	responseShape = bodyShape{first: "sender", firstMax: maxIdentityLen, second: "output", secondMax: maxOutputLen}
)

// extract pulls both field values out of body. ok is false when the body
// does not have the expected shape.
func (b bodyShape) extract(body []byte) (v1, v2 string, ok bool) {
	s := scanner{buf: body}

	if !s.lit("{") {
		return "", "", false
	}
	s.skipSpace()
	if !s.lit(`"` + b.first + `":`) {
		return "", "", false
	}
	s.skipSpace()
	if !s.lit(`"`) {
		return "", "", false
	}
	v1, ok = s.value(b.firstMax)
	if !ok {
		return "", "", false
	}
	// a first value longer than its limit leaves a non-quote byte here
	if !s.lit(`",`) {
		return "", "", false
	}
	s.skipSpace()
	if !s.lit(`"` + b.second + `":`) {
		return "", "", false
	}
	s.skipSpace()
	if !s.lit(`"`) {
		return "", "", false
	}
	v2, ok = s.value(b.secondMax)
	if !ok {
		return "", "", false
	}
	return v1, v2, true
}

type scanner struct {
	buf []byte
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.buf) && isSpace(s.buf[s.pos]) {
		s.pos++
	}
}

func (s *scanner) lit(want string) bool {
	if len(s.buf)-s.pos < len(want) || string(s.buf[s.pos:s.pos+len(want)]) != want {
		return false
	}
	s.pos += len(want)
	return true
}

// value reads up to limit non-quote bytes. At least one byte is required.
func (s *scanner) value(limit int) (string, bool) {
	start := s.pos
	for s.pos < len(s.buf) && s.buf[s.pos] != '"' && s.pos-start < limit {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return string(s.buf[start:s.pos]), true
}
