package builtin

import (
	"strconv"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "break", Special: true, Fn: breakBuiltin})
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "continue", Special: true, Fn: continueBuiltin})
}

// breakBuiltin and continueBuiltin are grounded on dxsh's builtins/
// break.c and continue.c: at most one numeric argument, clamped to the
// active loop nesting, an error when used outside any loop (spec §4.6).
func breakBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	return unwindLoop(it, "break", args, interp.UnwindBreak)
}

func continueBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	return unwindLoop(it, "continue", args, interp.UnwindContinue)
}

func unwindLoop(it *interp.Interp, name string, args []string, kind interp.UnwindKind) (int, interp.Unwind) {
	if len(args) > 2 {
		return specialUsageError(it, 1, "%s: too many arguments", name)
	}

	n := 1
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v <= 0 {
			return specialUsageError(it, 1, "%s: invalid number '%s'", name, args[1])
		}
		n = v
	}

	if it.LoopDepth() == 0 {
		return specialUsageError(it, 1, "%s: used outside of loop", name)
	}

	if n > it.LoopDepth() {
		n = it.LoopDepth()
	}
	return 0, interp.Unwind{Kind: kind, Depth: n}
}
