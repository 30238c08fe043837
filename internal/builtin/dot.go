package builtin

import (
	"os"
	"strings"

	"github.com/possh/possh/internal/interp"
)

func init() {
	e := &interp.BuiltinEntry{Name: ".", Special: true, Fn: dotBuiltin}
	interp.RegisterBuiltin(e)
}

// dotBuiltin is grounded on dxsh's builtins/dot.c: locate the file on
// PATH if its name contains no '/', then parse and execute it in the
// current shell (variables, options, and fds all shared — not a
// subshell), returning the last command's status or 0 on an empty file
// (spec §4.6).
func dotBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) < 2 {
		return specialUsageError(it, 1, ".: missing file operand")
	}
	if len(args) > 2 {
		return specialUsageError(it, 1, ".: too many arguments")
	}

	path, err := locateDotFile(it, args[1])
	if err != nil {
		warnx(it, ".: %s: %v", args[1], err)
		return 1, interp.None
	}

	data, err := os.ReadFile(path)
	if err != nil {
		warnx(it, ".: %s: %v", path, err)
		return 1, interp.None
	}

	lines := strings.Split(string(data), "\n")
	return it.RunFile(lines)
}

func locateDotFile(it *interp.Interp, name string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}
	path, ok := it.Env.Get("PATH")
	if !ok {
		path = interp.StandardPath()
	}
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			dir = "."
		}
		candidate := dir + "/" + name
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}
