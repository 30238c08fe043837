package builtin

import (
	"strconv"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "shift", Special: true, Fn: shiftBuiltin})
}

// shiftBuiltin is grounded on dxsh's builtins/shift.c: drops the first n
// positional parameters, n defaulting to 1, n==0 a no-op, and any count
// beyond what is available is a usage error (spec §4.6).
func shiftBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) > 2 {
		return specialUsageError(it, 1, "shift: too many arguments")
	}

	n := 1
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return specialUsageError(it, 1, "shift: invalid number '%s'", args[1])
		}
		n = v
	}

	if err := it.Env.Shift(n); err != nil {
		return specialUsageError(it, 1, "shift: %v", err)
	}
	return 0, interp.None
}
