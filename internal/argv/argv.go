// Package argv quotes and splits command-line arguments using the
// Windows convention, where backslashes are literal except when they
// precede a double quote. Quote and Split are exact inverses: for any
// argument list, Split(strings.Join(QuoteAll(args), " ")) == args.
package argv

import "strings"

// Quote escapes a single argument so a command-line parser recovers it
// verbatim. Arguments without whitespace or quotes pass through
// unchanged; empty arguments become "".
func Quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\"") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	backslashes := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch c {
		case '\\':
			backslashes++
		case '"':
			// Backslashes before a quote must be doubled, and the
			// quote itself escaped.
			b.WriteString(strings.Repeat("\\", 2*backslashes+1))
			b.WriteByte('"')
			backslashes = 0
		default:
			b.WriteString(strings.Repeat("\\", backslashes))
			b.WriteByte(c)
			backslashes = 0
		}
	}
	// Trailing backslashes are doubled so the closing quote stays a
	// delimiter.
	b.WriteString(strings.Repeat("\\", 2*backslashes))
	b.WriteByte('"')
	return b.String()
}

// QuoteAll quotes each argument in order.
func QuoteAll(args []string) []string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return quoted
}

// Split parses a command line into its arguments.
//
// The rules mirror the Windows argument parser: 2n backslashes before
// a quote yield n backslashes and a quoting toggle, 2n+1 backslashes
// before a quote yield n backslashes and a literal quote, and
// backslashes anywhere else are literal. Whitespace outside quotes
// separates arguments.
func Split(commandLine string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	haveArg := false

	i := 0
	for i < len(commandLine) {
		c := commandLine[i]
		switch {
		case c == '\\':
			backslashes := 0
			for i < len(commandLine) && commandLine[i] == '\\' {
				backslashes++
				i++
			}
			if i < len(commandLine) && commandLine[i] == '"' {
				current.WriteString(strings.Repeat("\\", backslashes/2))
				if backslashes%2 == 1 {
					current.WriteByte('"')
					i++
				}
				haveArg = true
			} else {
				current.WriteString(strings.Repeat("\\", backslashes))
				haveArg = true
			}

		case c == '"':
			inQuotes = !inQuotes
			haveArg = true
			i++

		case (c == ' ' || c == '\t') && !inQuotes:
			if haveArg {
				args = append(args, current.String())
				current.Reset()
				haveArg = false
			}
			i++

		default:
			current.WriteByte(c)
			haveArg = true
			i++
		}
	}
	if haveArg {
		args = append(args, current.String())
	}
	return args
}
