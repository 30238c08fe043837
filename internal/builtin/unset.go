package builtin

import (
	"github.com/possh/possh/internal/interp"
	"github.com/spf13/pflag"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "unset", Special: true, Fn: unsetBuiltin})
}

// unsetBuiltin is grounded on dxsh's builtins/unset.c: `-f`/`-v` select
// function vs. variable removal (variable is the default when neither is
// given), each remaining NAME validated and removed from every requested
// table (spec §4.6).
func unsetBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	fs := pflag.NewFlagSet("unset", pflag.ContinueOnError)
	fs.SetOutput(discardWriter{})
	function := fs.BoolP("functions", "f", false, "remove the given name from the function table")
	variable := fs.BoolP("variables", "v", false, "remove the given name from the variable table")
	if err := fs.Parse(args[1:]); err != nil {
		return specialUsageError(it, 2, "unset: %v", err)
	}

	removeFn, removeVar := *function, *variable
	if !removeFn && !removeVar {
		removeVar = true
	}

	success := true
	for _, name := range fs.Args() {
		if !isValidUnsetName(name) {
			warnx(it, "unset: '%s' is not a valid name", name)
			success = false
			continue
		}
		if removeVar {
			it.Env.Unset(name)
		}
		if removeFn {
			it.Env.Funcs.Remove(name)
		}
	}
	if success {
		return 0, interp.None
	}
	return 1, fatalizeUsageError(it, 1)
}

func isValidUnsetName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || (i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
