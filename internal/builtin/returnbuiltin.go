package builtin

import (
	"strconv"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "return", Special: true, Fn: returnBuiltin})
}

// returnBuiltin is grounded on dxsh's builtins/return.c: valid only
// inside a function body or a dot-sourced script (spec §4.6); default
// status is $?.
func returnBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) > 2 {
		return specialUsageError(it, 1, "return: too many arguments")
	}

	if !it.InCallFrame() {
		return specialUsageError(it, 1, "return: can only be used in a function or dot script")
	}

	status := it.LastStatus()
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return specialUsageError(it, 1, "return: invalid number '%s'", args[1])
		}
		status = v & 0xff
	}
	return status, interp.Unwind{Kind: interp.UnwindReturn, Status: status}
}
