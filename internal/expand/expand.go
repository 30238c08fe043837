// Package expand implements the Expander contract of spec §4.4: word
// expansion (parameters, command substitution, tilde, quote removal),
// IFS field splitting, shell pattern matching, and pathname expansion.
// The executor is the only consumer; this package has no dependency on
// internal/interp, so Context is an interface the executor implements.
package expand

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Context supplies everything expansion needs from the running shell:
// variable lookup, positional parameters, and a way to run a command
// substitution and capture its stdout. internal/interp.Interp
// implements this.
type Context interface {
	Lookup(name string) (string, bool)
	Positional() []string
	Arg0() string
	LastStatus() int
	ShellPID() int
	Noglob() bool
	Nounset() bool
	RunCommandSubst(src string) (string, error)
}

// Flags controls Expand's behavior beyond plain expand_word.
type Flags int

const (
	// Pathnames enables pathname (glob) expansion of each resulting field.
	Pathnames Flags = 1 << iota
	// NoQuotes disables quote removal, used for unquoted here-doc bodies
	// so "$" still expands but quote characters pass through literally.
	NoQuotes
	// NoFieldSplit suppresses IFS field splitting, used for the
	// right-hand side of NAME=value assignments and `export NAME=value`.
	NoFieldSplit
)

// Word is the minimal shape expand needs from an ast.Word: its raw
// source text and whether any of it was quoted. Declared locally to
// avoid importing internal/ast just for this tuple.
type Word struct {
	Text   string
	Quoted bool
}

// ExpandWord performs parameter/command/tilde expansion and quote
// removal on a single word, with no field splitting and no pathname
// expansion — spec §4.4's expand_word.
func ExpandWord(ctx Context, w Word) (string, error) {
	out, err := scan(ctx, w.Text, false)
	if err != nil {
		return "", err
	}
	return applyTilde(out), nil
}

// Expand performs expand_word's work plus IFS field splitting (unless
// NoFieldSplit is set) and, when Pathnames is set and noglob is off,
// pathname expansion — spec §4.4's expand.
func Expand(ctx Context, w Word, flags Flags) ([]string, error) {
	raw, err := scan(ctx, w.Text, flags&NoQuotes != 0)
	if err != nil {
		return nil, err
	}
	raw = applyTilde(raw)

	var fields []string
	if flags&NoFieldSplit != 0 {
		fields = []string{raw}
	} else {
		fields = splitFields(raw, ctx)
	}

	if flags&Pathnames != 0 && !ctx.Noglob() {
		fields, err = ExpandPathnames(fields)
		if err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// Matches reports whether word matches the shell pattern (used by
// `case`), with `*`, `?`, and `[...]` classes.
func Matches(word, pattern string) bool {
	ok, err := doublestar.Match(pattern, word)
	if err != nil {
		return false
	}
	return ok
}

// ExpandPathnames runs the glob stage over each field: a field
// containing glob metacharacters that resolves to at least one
// filesystem match is replaced by its sorted matches; a field with no
// matches (or no metacharacters at all) is passed through literally,
// matching spec §4.4 and the teacher's ExpandGlobs fallback behavior.
func ExpandPathnames(fields []string) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !strings.ContainsAny(f, "*?[") {
			out = append(out, f)
			continue
		}
		matches, err := doublestar.FilepathGlob(f)
		if err != nil || len(matches) == 0 {
			out = append(out, f)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func applyTilde(s string) string {
	if !strings.HasPrefix(s, "~") {
		return s
	}
	rest := s[1:]
	cut := strings.IndexByte(rest, '/')
	name := rest
	tail := ""
	if cut >= 0 {
		name = rest[:cut]
		tail = rest[cut:]
	}
	if name == "" {
		if home, ok := os.LookupEnv("HOME"); ok {
			return home + tail
		}
		return s
	}
	// ~user is not resolved (no user database lookup in this core);
	// left literal per spec's external-collaborator boundary.
	return s
}

// splitFields implements IFS field splitting: runs of IFS whitespace
// characters (space/tab/newline) collapse and are trimmed from the
// ends; any other single IFS character is itself a delimiter between
// (possibly empty) fields.
func splitFields(s string, ctx Context) []string {
	ifs, _ := ctx.Lookup("IFS")
	if _, ok := ctx.Lookup("IFS"); !ok {
		ifs = " \t\n"
	}
	if ifs == "" {
		return []string{s}
	}

	isWS := func(r byte) bool { return r == ' ' || r == '\t' || r == '\n' }
	isIFS := func(r byte) bool { return strings.IndexByte(ifs, r) >= 0 }

	var fields []string
	var cur strings.Builder
	i := 0
	n := len(s)

	// skip leading IFS whitespace
	for i < n && isWS(s[i]) && isIFS(s[i]) {
		i++
	}
	// trim trailing IFS whitespace
	for n > i && isWS(s[n-1]) && isIFS(s[n-1]) {
		n--
	}
	for i < n {
		c := s[i]
		if isIFS(c) {
			if isWS(c) {
				fields = append(fields, cur.String())
				cur.Reset()
				for i < n && isWS(s[i]) && isIFS(s[i]) {
					i++
				}
				continue
			}
			fields = append(fields, cur.String())
			cur.Reset()
			i++
			for i < n && isWS(s[i]) && isIFS(s[i]) {
				i++
			}
			continue
		}
		cur.WriteByte(c)
		i++
	}
	fields = append(fields, cur.String())

	if len(fields) == 1 && fields[0] == "" {
		return nil
	}
	return fields
}

// scan walks raw source text (as preserved by the tokenizer) and
// resolves quoting, backslash escapes, parameter expansion, and command
// substitution. noQuoteRemoval keeps quote characters in the output
// (for unquoted here-doc bodies) while still expanding "$".
func scan(ctx Context, s string, noQuoteRemoval bool) (string, error) {
	var out strings.Builder
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch c {
		case '\'':
			if noQuoteRemoval {
				out.WriteByte(c)
				i++
				break
			}
			j := strings.IndexByte(s[i+1:], '\'')
			if j < 0 {
				return "", fmt.Errorf("unterminated single quote")
			}
			out.WriteString(s[i+1 : i+1+j])
			i += j + 2

		case '"':
			i++
			if !noQuoteRemoval {
				// consumed, not re-emitted
			} else {
				out.WriteByte('"')
			}
			for i < n && s[i] != '"' {
				if s[i] == '\\' && i+1 < n && strings.ContainsRune(`"\$`+"`", rune(s[i+1])) {
					out.WriteByte(s[i+1])
					i += 2
					continue
				}
				if s[i] == '$' {
					consumed, val, err := expandDollar(ctx, s[i:])
					if err != nil {
						return "", err
					}
					out.WriteString(val)
					i += consumed
					continue
				}
				if s[i] == '`' {
					val, consumed, err := expandBacktick(ctx, s[i:])
					if err != nil {
						return "", err
					}
					out.WriteString(val)
					i += consumed
					continue
				}
				out.WriteByte(s[i])
				i++
			}
			if i < n {
				i++ // closing quote
				if noQuoteRemoval {
					out.WriteByte('"')
				}
			}

		case '\\':
			if i+1 < n {
				out.WriteByte(s[i+1])
				i += 2
			} else {
				i++
			}

		case '$':
			consumed, val, err := expandDollar(ctx, s[i:])
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i += consumed

		case '`':
			val, consumed, err := expandBacktick(ctx, s[i:])
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i += consumed

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

func expandBacktick(ctx Context, s string) (string, int, error) {
	end := strings.IndexByte(s[1:], '`')
	if end < 0 {
		return "", 0, fmt.Errorf("unterminated command substitution")
	}
	src := s[1 : 1+end]
	out, err := ctx.RunCommandSubst(src)
	return out, end + 2, err
}

// expandDollar expands one "$..." form at the start of s and returns how
// many bytes of s it consumed.
func expandDollar(ctx Context, s string) (int, string, error) {
	if len(s) < 2 {
		return 1, "$", nil
	}
	switch s[1] {
	case '(':
		depth := 1
		i := 2
		for i < len(s) && depth > 0 {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				break
			}
			i++
		}
		if depth != 0 {
			return 0, "", fmt.Errorf("unterminated command substitution")
		}
		// Arithmetic expansion is not implemented: "$((...))" is kept
		// literally rather than run as a command substitution.
		if strings.HasPrefix(s, "$((") {
			return i + 1, s[:i+1], nil
		}
		src := s[2:i]
		out, err := ctx.RunCommandSubst(src)
		return i + 1, out, err

	case '{':
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, "", fmt.Errorf("unterminated parameter expansion")
		}
		val, err := expandBraceParam(ctx, s[2:end])
		return end + 1, val, err

	case '@', '*':
		return 2, strings.Join(ctx.Positional(), " "), nil

	case '#':
		return 2, strconv.Itoa(len(ctx.Positional())), nil

	case '?':
		return 2, strconv.Itoa(ctx.LastStatus()), nil

	case '$':
		return 2, strconv.Itoa(ctx.ShellPID()), nil

	case '0':
		return 2, ctx.Arg0(), nil

	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		idx := int(s[1] - '1')
		pos := ctx.Positional()
		if idx < len(pos) {
			return 2, pos[idx], nil
		}
		return 2, "", nil
	}

	if isNameStart(s[1]) {
		j := 1
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		name := s[1:j]
		v, ok := ctx.Lookup(name)
		if !ok && ctx.Nounset() {
			return 0, "", fmt.Errorf("%s: parameter not set", name)
		}
		return j, v, nil
	}

	return 1, "$", nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// expandBraceParam handles the common ${NAME}, ${NAME:-word},
// ${NAME:=word}, ${NAME:+word}, ${NAME:?word}, and ${#NAME} forms.
func expandBraceParam(ctx Context, body string) (string, error) {
	if strings.HasPrefix(body, "#") {
		name := body[1:]
		v, ok := ctx.Lookup(name)
		if !ok && ctx.Nounset() {
			return "", fmt.Errorf("%s: parameter not set", name)
		}
		return strconv.Itoa(len(v)), nil
	}

	for _, op := range []string{":-", ":=", ":+", ":?"} {
		if idx := strings.Index(body, op); idx >= 0 {
			name := body[:idx]
			word := body[idx+2:]
			v, ok := ctx.Lookup(name)
			unsetOrEmpty := !ok || v == ""
			switch op {
			case ":-":
				if unsetOrEmpty {
					return word, nil
				}
				return v, nil
			case ":+":
				if unsetOrEmpty {
					return "", nil
				}
				return word, nil
			case ":=":
				if unsetOrEmpty {
					return word, nil
				}
				return v, nil
			case ":?":
				if unsetOrEmpty {
					if word == "" {
						word = "parameter null or not set"
					}
					return "", fmt.Errorf("%s: %s", name, word)
				}
				return v, nil
			}
		}
	}

	v, ok := ctx.Lookup(body)
	if !ok && ctx.Nounset() {
		return "", fmt.Errorf("%s: parameter not set", body)
	}
	return v, nil
}
