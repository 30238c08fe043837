package builtin

import (
	"strconv"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "exit", Special: true, Fn: exitBuiltin})
}

// exitBuiltin is grounded on dxsh's builtins/exit.c: default status is
// $?, an out-of-range or non-numeric argument becomes 255 rather than a
// hard failure (spec §6's exit-code table).
func exitBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) > 2 {
		warnx(it, "exit: too many arguments")
	}

	status := it.LastStatus()
	if len(args) >= 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			warnx(it, "exit: invalid exit status '%s'", args[1])
			status = 255
		} else if v < 0 || v > 255 {
			status = 255
		} else {
			status = v
		}
	}
	return status, interp.Unwind{Kind: interp.UnwindExit, Status: status}
}
