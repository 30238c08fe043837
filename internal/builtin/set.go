package builtin

import (
	"fmt"
	"strings"

	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/state"
	"github.com/possh/possh/internal/ui"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "set", Special: true, Fn: setBuiltin})
}

// setBuiltin is grounded on dxsh's builtins/set.c: leading `-`/`+` option
// clusters toggle short options via state.Options.SetShort, a bare `-o`/
// `+o` prints the option table (verbose for `-o`, `set +o`-replayable for
// `+o`), `-o`/`+o NAME` toggles a long option, `--` forces the remaining
// operands to become the new positional parameters even if empty, and
// with no operands at all the positional parameters are left alone and
// every variable is printed `name=value` (spec §4.6).
func setBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	setArguments := false
	i := 1

loop:
	for ; i < len(args); i++ {
		arg := args[i]
		if len(arg) == 0 || (arg[0] != '-' && arg[0] != '+') || arg == "-" || arg == "+" {
			break
		}
		if arg == "--" {
			i++
			setArguments = true
			break
		}

		plus := arg[0] == '+'
		for j := 1; j < len(arg); j++ {
			c := arg[j]
			if it.Env.Options.SetShort(c, !plus) {
				continue
			}
			if c != 'o' {
				return specialUsageError(it, 1, "set: invalid option '%c%c'", arg[0], c)
			}
			if j+1 < len(arg) {
				return specialUsageError(it, 1, "set: unexpected '%c' after %co", arg[j+1], arg[0])
			}

			i++
			if i >= len(args) {
				printOptions(it, plus)
				continue loop
			}
			name := args[i]
			if !it.Env.Options.SetLong(name, !plus) {
				return specialUsageError(it, 1, "set: invalid option name '%s'", name)
			}
			break
		}
	}

	if len(args) == 1 {
		printVariables(it)
		return 0, interp.None
	}

	if i < len(args) || setArguments {
		it.Env.SetPositional(append([]string{}, args[i:]...))
	}

	return 0, interp.None
}

func printOptions(it *interp.Interp, plusOption bool) {
	out := it.Stdout()
	if plusOption {
		for _, name := range state.LongNames() {
			value, _ := it.Env.Options.Get(name)
			sign := byte('+')
			if value {
				sign = '-'
			}
			fmt.Fprintf(out, "set %co %s\n", sign, name)
		}
		return
	}

	table := ui.NewTable(out)
	for _, name := range state.LongNames() {
		value, _ := it.Env.Options.Get(name)
		status := "off"
		if value {
			status = "on"
		}
		table.AddRow(name, status)
	}
	table.Render()
}

func printVariables(it *interp.Interp) {
	out := it.Stdout()
	for _, v := range it.Env.All() {
		fmt.Fprintf(out, "%s=%s\n", v.Name, shQuote(v.Value))
	}
}

func shQuote(s string) string {
	if s == "" {
		return "''"
	}
	needsQuote := false
	for _, r := range s {
		if !isSafeUnquoted(r) {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafeUnquoted(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '/' || r == '.' || r == ',' || r == ':':
		return true
	}
	return false
}
