package builtin

import (
	"syscall"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "exec", Special: true, Fn: execBuiltin})
}

// execBuiltin is grounded on dxsh's builtins/exec.c: with no operand it
// relies on ExecuteSimpleCommand's "don't pop redirections for exec"
// special case (simple.go) so the just-applied redirections persist
// permanently; with operands it replaces the shell process image outright
// via syscall.Exec and never returns on success (spec §4.5, §4.6).
func execBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) < 2 {
		return 0, interp.None
	}

	name := args[1]
	path, err := it.ResolvePath(name)
	if err != nil {
		warnx(it, "%s: command not found", name)
		return 127, interp.None
	}

	if err := it.ReplaceProcessFds(); err != nil {
		warnx(it, "exec: %v", err)
		return 126, interp.None
	}

	argv := append([]string{name}, args[2:]...)
	err = syscall.Exec(path, argv, it.Env.Exported())
	warnx(it, "%s: %v", name, err)
	return 126, interp.None
}
