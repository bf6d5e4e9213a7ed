// ABOUTME: Tests for relay string escaping
// ABOUTME: Covers the three rewritten bytes, pass-through, and bounded truncation

package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape_Unbounded(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "whoami", "whoami"},
		{"quotes and newline", "He said \"hi\"\nBye", `He said \"hi\"\nBye`},
		{"backslash", `C:\Users`, `C:\\Users`},
		{"tab passes through", "a\tb", "a\tb"},
		{"carriage return passes through", "a\r\nb", "a\r\\nb"},
		{"utf8 passes through", "héllo", "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in, 0))
		})
	}
}

func TestEscape_NewlineIsLiteralBackslashN(t *testing.T) {
	got := Escape("line1\nline2", 0)
	assert.NotContains(t, got, "\n")
	assert.Equal(t, `line1\nline2`, got)
}

func TestEscape_BoundedPlain(t *testing.T) {
	// size 8 leaves room for 6 bytes
	assert.Equal(t, "abcdef", Escape("abcdefghij", 8))
	assert.Equal(t, "abc", Escape("abc", 8))
}

func TestEscape_BoundedDropsPairThatDoesNotFit(t *testing.T) {
	// limit 6: "abcde" is 5 bytes, the quote pair needs 2 and is dropped,
	// the following plain byte still fits.
	assert.Equal(t, "abcdeX", Escape(`abcde"X`, 8))
}

func TestEscape_BoundedNeverExceedsLimit(t *testing.T) {
	in := strings.Repeat("\"\\\n", 400)
	for _, size := range []int{3, 4, 5, 16, 512, 4096} {
		got := Escape(in, size)
		assert.LessOrEqual(t, len(got), size-2, "size %d", size)
	}
}

func TestEscape_TinySizes(t *testing.T) {
	assert.Equal(t, "", Escape("abc", 1))
	assert.Equal(t, "", Escape("abc", 2))
	assert.Equal(t, "a", Escape("abc", 3))
	assert.Equal(t, "a", Escape(`"abc`, 3))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"He said \"hi\"\nBye"`, Quote("He said \"hi\"\nBye"))
	assert.Equal(t, `""`, Quote(""))
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "whoami", "whoami"},
		{"quotes and newline", `He said \"hi\"\nBye`, "He said \"hi\"\nBye"},
		{"backslash", `C:\\Users`, `C:\Users`},
		{"unknown escape kept", `a\tb`, `a\tb`},
		{"trailing backslash kept", `abc\`, `abc\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.in))
		})
	}
}

func TestUnescape_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "x", "a\"b\\c\nd", "\\\\\"\"\n\n", "tab\there"} {
		assert.Equal(t, s, Unescape(Escape(s, 0)))
	}
}
