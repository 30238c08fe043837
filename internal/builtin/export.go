package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/possh/possh/internal/interp"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "export", Special: true, Fn: exportBuiltin})
}

// exportBuiltin implements spec §4.6's `export`: a NAME=val argument
// assigns and marks exported; a bare NAME marks an existing variable
// exported; no arguments lists every exported variable (as `export
// NAME=value` lines, dxsh's own `-p` listing shape).
func exportBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	if len(args) == 1 {
		listExports(it)
		return 0, interp.None
	}

	status := 0
	for _, arg := range args[1:] {
		if idx := strings.IndexByte(arg, '='); idx >= 0 {
			name, value := arg[:idx], arg[idx+1:]
			if err := it.Env.Set(name, value, true); err != nil {
				warnx(it, "export: %v", err)
				status = 1
			}
			continue
		}
		if v, ok := it.Env.Get(arg); ok {
			if err := it.Env.Set(arg, v, true); err != nil {
				warnx(it, "export: %v", err)
				status = 1
			}
		} else if err := it.Env.Set(arg, "", true); err != nil {
			warnx(it, "export: %v", err)
			status = 1
		}
	}
	if status != 0 {
		return status, fatalizeUsageError(it, status)
	}
	return status, interp.None
}

func listExports(it *interp.Interp) {
	vars := it.Env.All()
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	for _, v := range vars {
		if v.Exported {
			fmt.Fprintf(it.Stdout(), "export %s=%s\n", v.Name, v.Value)
		}
	}
}
