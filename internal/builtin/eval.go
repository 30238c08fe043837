package builtin

import (
	"strings"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "eval", Special: true, Fn: evalBuiltin})
}

// evalBuiltin is grounded on dxsh's builtins/eval.c: join the arguments
// with spaces, then parse and execute the result in the current shell
// through RunText, whose line feeder ends each line with a newline
// (spec §4.6).
func evalBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	src := strings.Join(args[1:], " ")
	return it.RunText(src)
}
