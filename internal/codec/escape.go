// ABOUTME: Quote-safe escaping for string values embedded in relay replies
// ABOUTME: Bounded variant truncates silently instead of overflowing its budget

package codec

import "strings"

// Escape returns s with quotes, backslashes and newlines escaped.
// size bounds the result to size-2 bytes; size <= 0 means unbounded.
func Escape(s string, size int) string {
	if size <= 0 {
		return escapeAll(s)
	}

	limit := size - 2
	if limit <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(min(len(s), limit))

	for i := 0; i < len(s) && b.Len() < limit; i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			if b.Len() < limit-1 {
				b.WriteByte('\\')
				b.WriteByte(c)
			}
		case '\n':
			if b.Len() < limit-1 {
				b.WriteByte('\\')
				b.WriteByte('n')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote escapes s without a bound and wraps it in double quotes.
func Quote(s string) string {
	return `"` + escapeAll(s) + `"`
}

func escapeAll(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. Unknown escape sequences are kept as written,
// and a trailing lone backslash is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\\':
			b.WriteByte(next)
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
