package builtin

import (
	"fmt"
	"strconv"
	"syscall"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "umask", Special: false, Fn: umaskBuiltin})
}

// umaskBuiltin is grounded on dxsh's builtins/umask.c: with an operand,
// parse it as octal and install it as both the process umask (so every
// later open(2)/redirection is masked, spec §4.6) and the shell's
// recorded value; with none, report the current mask without disturbing
// it.
func umaskBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) > 1 {
		value, err := strconv.ParseUint(args[1], 8, 32)
		if err != nil || value > 0777 {
			warnx(it, "umask: '%s': invalid mode", args[1])
			return 1, interp.None
		}
		old := syscall.Umask(int(value))
		_ = old
		it.Env.SetUmask(uint32(value))
		return 0, interp.None
	}

	mask := syscall.Umask(0)
	syscall.Umask(mask)
	it.Env.SetUmask(uint32(mask))
	fmt.Fprintf(it.Stdout(), "%04o\n", mask)
	return 0, interp.None
}
