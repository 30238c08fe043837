package builtin

import (
	"os"
	"strings"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "cd", Special: false, Fn: cdBuiltin})
}

// cdBuiltin is grounded on dxsh's builtins/cd.c: it resolves the target
// (argv[1], or $HOME when bare), canonicalizes it against the shell's
// logical PWD (`.`/`..` folded textually, no symlink resolution) rather
// than trusting getcwd(3) after the chdir, then chdir's and updates PWD
// (spec §4.6, §8's logical-PWD property).
func cdBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	var target string
	if len(args) >= 2 {
		target = args[1]
	} else {
		home, ok := it.Env.Get("HOME")
		if !ok || home == "" {
			warnx(it, "cd: HOME not set")
			return 1, interp.None
		}
		target = home
	}

	newPwd := logicalJoin(it.Env.Pwd(), target)
	if err := os.Chdir(newPwd); err != nil {
		warnx(it, "cd: '%s': %v", target, err)
		return 1, interp.None
	}

	it.Env.SetPwd(newPwd)
	return 0, interp.None
}

// logicalJoin implements getNewLogicalPwd: an absolute target replaces
// oldPwd outright; a relative one is resolved component by component
// against oldPwd, folding "." away and popping one path segment per
// "..", never touching the filesystem (spec §8's cd boundary test: `cd
// /a/b/../../c` from logical PWD `/a/b` yields `/c`).
func logicalJoin(oldPwd, dir string) string {
	base := oldPwd
	if strings.HasPrefix(dir, "/") {
		base = "/"
	}
	if base == "" {
		base = "/"
	}

	segments := strings.Split(strings.Trim(base, "/"), "/")
	if len(segments) == 1 && segments[0] == "" {
		segments = segments[:0]
	}

	for _, component := range strings.Split(dir, "/") {
		switch component {
		case "", ".":
			// ignored
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, component)
		}
	}

	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
