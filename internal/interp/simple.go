package interp

import (
	"fmt"
	"os"
	"strings"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/state"
)

type assignment struct{ name, value string }

// ExecuteSimpleCommand implements spec §4.5's execute_simple_command in
// its eight numbered steps: expand words and redirection operands and
// assignment values, resolve the command (special built-in > function >
// regular built-in > external utility > the null command), apply
// assignments either permanently or as scoped overlays, apply
// redirections with or without save, and dispatch.
func (it *Interp) ExecuteSimpleCommand(sc *ast.SimpleCommand) (int, Unwind) {
	tentativeName := ""
	if len(sc.Words) > 0 {
		tentativeName = sc.Words[0].Text
	}

	words, err := it.expandWords(tentativeName, sc.Words)
	if err != nil {
		it.warnx("%v", err)
		return 1, None
	}

	redirs := make([]ast.Redirection, 0, len(sc.Redirs))
	for _, r := range sc.Redirs {
		er, err := it.expandRedirOperand(r)
		if err != nil {
			it.warnx("%v", err)
			return 1, None
		}
		redirs = append(redirs, er)
	}

	var assigns []assignment
	for _, a := range sc.Assignments {
		v, err := it.expandAssignValue(a.Value)
		if err != nil {
			it.warnx("%v", err)
			return 1, None
		}
		assigns = append(assigns, assignment{a.Name, v})
	}

	var cmdName string
	var args []string
	if len(words) > 0 {
		cmdName, args = words[0], words[1:]
	}

	if cmdName == "" {
		for _, a := range assigns {
			if err := it.Env.Set(a.name, a.value, false); err != nil {
				it.warnx("%v", err)
				return 1, None
			}
		}
		return it.ApplyRedirsStandalone(redirs)
	}

	special, isSpecial := LookupBuiltin(cmdName)
	if isSpecial && !special.Special {
		isSpecial = false
	}

	var fn *state.Function
	if !isSpecial {
		fn = it.Env.Funcs.Lookup(cmdName)
	}

	var regular *BuiltinEntry
	if !isSpecial && fn == nil {
		if e, ok := LookupBuiltin(cmdName); ok && !e.Special {
			regular = e
		}
	}

	if it.Env.Options.Xtrace {
		it.traceCommand(cmdName, args)
	}

	if isSpecial {
		for _, a := range assigns {
			if err := it.Env.Set(a.name, a.value, false); err != nil {
				it.warnx("%v", err)
			}
		}
		mark := it.RedirMark()
		if err := it.ApplyRedirs(redirs); err != nil {
			it.warnx("%v", err)
			if cmdName == "exec" {
				// spec §7: a redirection failure on exec's permanent
				// (unsaved) redirections takes the shell down with it,
				// since there is nothing left to restore.
				return 1, Unwind{Kind: UnwindExit, Status: 1}
			}
			return 1, None
		}
		status, uw := special.Fn(it, append([]string{cmdName}, args...))
		if cmdName != "exec" {
			it.PopRedirsTo(mark)
		}
		return status, uw
	}

	omark := it.Env.Mark()
	for _, a := range assigns {
		it.Env.PushOverlay(a.name, a.value)
	}
	defer it.Env.PopOverlaysTo(omark)

	if fn != nil {
		return it.callFunction(fn, cmdName, args, redirs)
	}
	if regular != nil {
		rmark := it.RedirMark()
		if err := it.ApplyRedirs(redirs); err != nil {
			it.warnx("%v", err)
			return 1, None
		}
		defer it.PopRedirsTo(rmark)
		return regular.Fn(it, append([]string{cmdName}, args...))
	}

	return it.execExternal(cmdName, args, assigns, redirs)
}

// ApplyRedirsStandalone implements the null (`:`) command's redirection
// handling: apply with save, then immediately pop, status 0 — spec
// §4.6's `:` plus §4.5 step 6's "null command" save case.
func (it *Interp) ApplyRedirsStandalone(redirs []ast.Redirection) (int, Unwind) {
	mark := it.RedirMark()
	if err := it.ApplyRedirs(redirs); err != nil {
		it.warnx("%v", err)
		return 1, None
	}
	it.PopRedirsTo(mark)
	return 0, None
}

// callFunction implements spec §4.5's function-invocation rule: a new
// positional-parameter frame, a fresh loop-nesting scope (break/continue
// never escape a function body into the caller's enclosing loop), and a
// refcount bump so `unset -f` racing a recursive call doesn't free the
// body out from under it (spec §3, §9).
func (it *Interp) callFunction(fn *state.Function, name string, args []string, redirs []ast.Redirection) (int, Unwind) {
	fn.Retain()
	defer fn.Release()

	restoreFrame := it.EnterCallFrame()
	defer restoreFrame()

	rmark := it.RedirMark()
	if err := it.ApplyRedirs(redirs); err != nil {
		it.warnx("%v", err)
		return 1, None
	}
	defer it.PopRedirsTo(rmark)

	restorePositional := it.Env.PushPositionalFrame(name, args)
	defer restorePositional()

	savedLoop := it.loopCounter
	it.loopCounter = 0
	status, uw := it.ExecuteCommand(fn.Body)
	it.loopCounter = savedLoop

	if uw.Kind == UnwindReturn {
		return uw.Status, None
	}
	return status, uw
}

// execExternal resolves name on PATH, forks an Interp carrying the
// redirected fds and the assignment-derived environment, and runs the
// external utility (spec §4.5 step 7).
func (it *Interp) execExternal(name string, args []string, assigns []assignment, redirs []ast.Redirection) (int, Unwind) {
	path, err := it.ResolvePath(name)
	if err != nil {
		it.warnx("%s: command not found", name)
		return 127, None
	}

	child := it.fork()
	if err := child.ApplyRedirs(redirs); err != nil {
		it.warnx("%v", err)
		return 126, None
	}
	for _, a := range assigns {
		_ = child.Env.Set(a.name, a.value, true)
	}

	return it.runExternal(path, name, args, child.Env.Exported())
}

// ResolvePath implements spec §6's "standard search path": a name
// containing '/' is used as-is (checked executable); otherwise PATH is
// searched left to right, with an empty element meaning ".". Exported
// for the `command`/`exec` built-ins, which need the same resolution
// rule outside a fresh fork.
func (it *Interp) ResolvePath(name string) (string, error) {
	return it.resolveIn(name, it.searchPath())
}

// ResolvePathStandard resolves name against spec §6's standard search
// path (`confstr(_CS_PATH)`'s fallback, `/bin:/usr/bin`) regardless of
// the current $PATH, for the `command -p` built-in flag.
func (it *Interp) ResolvePathStandard(name string) (string, error) {
	return it.resolveIn(name, strings.Split(StandardPath(), ":"))
}

func (it *Interp) resolveIn(name string, dirs []string) (string, error) {
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: not executable", name)
	}
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		candidate := dir + "/" + name
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: not found", name)
}

func (it *Interp) searchPath() []string {
	if p, ok := it.Env.Get("PATH"); ok {
		return strings.Split(p, ":")
	}
	return strings.Split(StandardPath(), ":")
}

// StandardPath returns the fallback search path spec §6 names for
// `command -p` and an unset PATH: confstr(_CS_PATH) is not reachable
// from portable Go, so this falls back straight to the documented
// default.
func StandardPath() string { return "/bin:/usr/bin" }

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// RunCommandBypassingFunctions implements the `command` built-in's
// dispatch rule (spec §4.6): skip the shell-function lookup entirely,
// trying a built-in first and falling back to an external utility,
// optionally forced onto the standard search path (`command -p`).
func (it *Interp) RunCommandBypassingFunctions(argv []string, standardPath bool) (int, Unwind) {
	if len(argv) == 0 {
		return 0, None
	}
	name, args := argv[0], argv[1:]

	if e, ok := LookupBuiltin(name); ok {
		return e.Fn(it, argv)
	}

	var path string
	var err error
	if standardPath {
		path, err = it.ResolvePathStandard(name)
	} else {
		path, err = it.ResolvePath(name)
	}
	if err != nil {
		it.warnx("%s: command not found", name)
		return 127, None
	}
	return it.runExternal(path, name, args, it.Env.Exported())
}

func (it *Interp) traceCommand(name string, args []string) {
	fmt.Fprintf(it.tracer, "+ %s\n", strings.Join(append([]string{name}, args...), " "))
}
