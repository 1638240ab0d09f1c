package argv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestQuote tests the escaping of individual arguments.
func TestQuote(t *testing.T) {
	cases := []struct {
		arg  string
		want string
	}{
		{"plain", "plain"},
		{"with space", `"with space"`},
		{"", `""`},
		{`a"b`, `"a\"b"`},
		{`back\slash`, `back\slash`},
		{`trailing\`, `trailing\`},
		{`trailing \`, `"trailing \\"`},
		{`\"`, `"\\\""`},
		{"tab\there", `"tab	here"`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Quote(tc.arg), "arg: %q", tc.arg)
	}
}

// TestSplit tests parsing of whole command lines.
func TestSplit(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"one two three", []string{"one", "two", "three"}},
		{`"one two" three`, []string{"one two", "three"}},
		{`""`, []string{""}},
		{`a"b c"d`, []string{"ab cd"}},
		{`exe \\server\share`, []string{"exe", `\\server\share`}},
		{`a\\\"b`, []string{`a\"b`}},
		{`a\\\\"b c"`, []string{`a\\b c`}},
		{"tabs\there", []string{"tabs", "here"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Split(tc.line), "line: %q", tc.line)
	}
}

// TestRoundTrip tests that Split inverts QuoteAll exactly.
func TestRoundTrip(t *testing.T) {
	cases := [][]string{
		{"lldb", "-o", "target create /usr/bin/game"},
		{"path with spaces", ""},
		{`back\slash`, `trailing\`, `many\\\`},
		{`embedded"quote`, `\"both\`},
		{`"`, `\`, `\\`, `\"`},
		{"mixed \t whitespace", "plain"},
	}
	for _, args := range cases {
		line := strings.Join(QuoteAll(args), " ")
		assert.Equal(t, args, Split(line), "line: %s", line)
	}
}
