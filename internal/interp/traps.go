package interp

import (
	"strings"

	"github.com/possh/possh/internal/parse"
	"github.com/possh/possh/internal/token"
)

// firePendingTraps runs any signal traps that arrived since the last safe
// point (spec §5's deferred-trap model): executeCommand calls this on
// entry, which is the only place control returns to between commands. An
// `exit`/`return` inside a handler unwinds out to the caller immediately,
// the remaining pending traps left queued for the next safe point —
// spec §4.6's `exit` contract doesn't stop applying just because it was
// invoked from a trap rather than ordinary command text.
func (it *Interp) firePendingTraps() Unwind {
	pending := it.Env.Traps.TakePending()
	if len(pending) == 0 {
		return None
	}
	it.Env.Traps.SetRunning(true)
	defer it.Env.Traps.SetRunning(false)
	for k, sig := range pending {
		action, ok := it.Env.Traps.Action(sig)
		if !ok || action == "" {
			continue
		}
		if _, uw := it.runTrapAction(action); uw.Kind != UnwindNone {
			for _, rest := range pending[k+1:] {
				it.Env.Traps.Raise(rest)
			}
			return uw
		}
	}
	return None
}

// RunExitTrap runs the EXIT pseudo-trap, if any, exported so the
// top-level loop can invoke it once on shell termination.
func (it *Interp) RunExitTrap() { it.runExitTrap() }

// runExitTrap runs the EXIT pseudo-trap, if any, bypassing the pending
// queue entirely since shell termination is not itself a safe point the
// ordinary dispatch loop revisits (spec §4.6's `trap` EXIT semantics).
func (it *Interp) runExitTrap() {
	action, ok := it.Env.Traps.Action("EXIT")
	if !ok || action == "" {
		return
	}
	it.Env.Traps.SetRunning(true)
	defer it.Env.Traps.SetRunning(false)
	it.runTrapAction(action)
}

// runTrapAction parses and executes a trap handler's text in the current
// environment (trap actions run with the invoking shell's variables and
// fds, not a forked subshell), returning whatever Unwind it produced so
// the caller can decide whether to propagate an `exit`/`return` further.
func (it *Interp) runTrapAction(action string) (int, Unwind) {
	lines := strings.Split(action, "\n")
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
		if result != parse.Match {
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
