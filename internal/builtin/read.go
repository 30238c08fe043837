package builtin

import (
	"io"
	"strings"

	"github.com/possh/possh/internal/interp"
	"github.com/spf13/pflag"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "read", Special: false, Fn: readBuiltin})
}

// readBuiltin is a direct transliteration of dxsh's builtins/read.c
// state machine: byte-at-a-time from fd 0, leading-IFS-whitespace
// skipping per field, backslash-newline continuation unless `-r`, and
// the last name absorbing the remainder with trailing IFS whitespace
// trimmed (spec §4.6). Returns 1 on EOF with a partial read, 2 on usage
// error.
func readBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	fs := pflag.NewFlagSet("read", pflag.ContinueOnError)
	fs.SetOutput(discardWriter{})
	raw := fs.BoolP("raw", "r", false, "don't interpret backslash escapes")
	delim := fs.StringP("delimiter", "d", "", "read until the first character of DELIM rather than newline")
	if err := fs.Parse(args[1:]); err != nil {
		warnx(it, "read: %v", err)
		return 2, interp.None
	}

	delimiter := byte('\n')
	if len(*delim) > 1 {
		warnx(it, "read: invalid delimiter '%s'", *delim)
		return 2, interp.None
	}
	if len(*delim) == 1 {
		delimiter = (*delim)[0]
	}
	interpretBackslash := !*raw

	names := fs.Args()
	if len(names) == 0 {
		warnx(it, "read: missing operand")
		return 2, interp.None
	}

	ifs := it.Env.IFS()
	eofReached := false
	ignoreIfsAtBegin := false

	readByte := func() (byte, bool, error) {
		var buf [1]byte
		n, err := it.Stdin().Read(buf[:])
		if n == 1 {
			return buf[0], true, nil
		}
		if err == io.EOF || n == 0 {
			return 0, false, nil
		}
		return 0, false, err
	}

	for ; len(names) > 0; names = names[1:] {
		lastVar := len(names) == 1
		var buf strings.Builder
		backslash := false
		ignoreIfsWhitespaceAtBegin := true
		delimiterFound := false

		for !delimiterFound && !eofReached {
			c, ok, err := readByte()
			if err != nil {
				warnx(it, "read: read error: %v", err)
				return 2, interp.None
			}
			if !ok {
				eofReached = true
				break
			}

			if ignoreIfsWhitespaceAtBegin {
				if c != delimiter && strings.IndexByte(ifs, c) >= 0 {
					if c == ' ' || c == '\t' || c == '\n' {
						continue
					} else if ignoreIfsAtBegin {
						ignoreIfsAtBegin = false
						continue
					}
				}
				ignoreIfsAtBegin = false
				ignoreIfsWhitespaceAtBegin = false
			}

			switch {
			case backslash:
				if c != '\n' {
					buf.WriteByte(c)
				}
				backslash = false
			case interpretBackslash && c == '\\':
				backslash = true
			case c == delimiter:
				delimiterFound = true
			case !lastVar && strings.IndexByte(ifs, c) >= 0:
				ignoreIfsAtBegin = c == ' ' || c == '\t' || c == '\n'
				goto nextField
			default:
				buf.WriteByte(c)
			}
		}

	nextField:
		value := buf.String()
		if lastVar {
			value = trimTrailingIFSWhitespace(value, ifs)
		}
		if err := it.Env.Set(names[0], value, false); err != nil {
			warnx(it, "read: %v", err)
			return 2, interp.None
		}
	}

	if eofReached {
		return 1, interp.None
	}
	return 0, interp.None
}

func trimTrailingIFSWhitespace(s, ifs string) string {
	end := len(s)
	for end > 0 {
		c := s[end-1]
		if (c == ' ' || c == '\t' || c == '\n') && strings.IndexByte(ifs, c) >= 0 {
			end--
			continue
		}
		break
	}
	return s[:end]
}
