package interp

import (
	"strings"

	"github.com/possh/possh/internal/parse"
	"github.com/possh/possh/internal/token"
)

// LoopDepth reports the count of lexically active loop frames (spec §3's
// loopCounter invariant), exported for the `break`/`continue` built-ins'
// "used outside of loop" check.
func (it *Interp) LoopDepth() int { return it.loopCounter }

// InCallFrame reports whether execution is currently inside a function
// body or a dot-sourced script — the only contexts spec §4.6's `return`
// built-in is valid in.
func (it *Interp) InCallFrame() bool { return it.callDepth > 0 }

// EnterCallFrame marks entry into a function body or dot-sourced script,
// returning a restore closure the caller defers. callFunction and the
// `.` built-in both call this so `return` can validate its context.
func (it *Interp) EnterCallFrame() func() {
	it.callDepth++
	return func() { it.callDepth-- }
}

// RunText parses and executes src as shell source in the current Interp
// (current variables, fds, and — unlike a subshell — current process):
// spec §4.6's shared contract behind `eval` (join args, parse, execute)
// and `trap` action handlers. Every Unwind propagates to the caller, so a
// `break`/`continue` embedded in eval'd text can still reach an enclosing
// loop and a `return`/`exit` leaves the function or shell, matching the "runs in the current shell"
// model spec.md §4.6 describes for `eval`.
func (it *Interp) RunText(src string) (int, Unwind) {
	lines := strings.Split(src, "\n")
	idx := 0
	next := func(bool) (string, bool) {
		if idx >= len(lines) {
			return "", false
		}
		l := lines[idx]
		idx++
		return l, true
	}

	p := parse.New(token.NextLine(next))
	status := 0
	for {
		tree, result, msg := p.Parse()
		if result == parse.Syntax {
			it.warnx("syntax error: %s", msg)
			return 1, it.syntaxErrorUnwind(1)
		}
		if result == parse.NoCommand {
			break
		}
		var uw Unwind
		status, uw = it.ExecuteComplete(tree)
		it.SetLastStatus(status)
		if uw.Kind != UnwindNone {
			return status, uw
		}
	}
	return status, None
}

// syntaxErrorUnwind implements spec §7's "in non-interactive mode the
// shell exits with 1 or 2" rule for a parse error encountered by
// RunText/RunFile (eval/`.`/trap-action execution) the same way
// cmd/possh's own top-level loop already handles it for directly typed
// input: fatal unless the shell is interactive.
func (it *Interp) syntaxErrorUnwind(status int) Unwind {
	if it.Env.Options.Interactive {
		return None
	}
	return Unwind{Kind: UnwindExit, Status: status}
}

// RunFile implements the `.` built-in's "parse and execute in the
// current shell" contract: a dot-sourced script shares this Interp's
// variables, options, and open fds, and may `return` to its caller
// without exiting the shell.
func (it *Interp) RunFile(lines []string) (int, Unwind) {
	restore := it.EnterCallFrame()
	defer restore()

	idx := 0
	next := func(bool) (string, bool) {
		if idx >= len(lines) {
			return "", false
		}
		l := lines[idx]
		idx++
		return l, true
	}

	p := parse.New(token.NextLine(next))
	status := 0
	for {
		tree, result, msg := p.Parse()
		if result == parse.Syntax {
			it.warnx("syntax error: %s", msg)
			return 1, it.syntaxErrorUnwind(1)
		}
		if result == parse.NoCommand {
			break
		}
		var uw Unwind
		status, uw = it.ExecuteComplete(tree)
		it.SetLastStatus(status)
		if uw.Kind == UnwindReturn {
			return uw.Status, None
		}
		if uw.Kind != UnwindNone {
			return status, uw
		}
	}
	return status, None
}
