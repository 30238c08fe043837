package builtin

import (
	"fmt"

	"github.com/possh/possh/internal/interp"
)

// warnx mirrors the teacher's/original's warnx-style diagnostic used
// throughout dxsh's builtins/*.c: program name, message, newline, to the
// invoking Interp's current stderr fd (so it honors any redirection
// applied to the built-in itself).
func warnx(it *interp.Interp, format string, args ...any) {
	fmt.Fprintf(it.Stderr(), "possh: %s\n", fmt.Sprintf(format, args...))
}

// specialUsageError reports a special built-in's usage error (spec
// §4.6: bad syntax/arguments, as opposed to a plain runtime failure) and
// implements spec §4.6/§7's fatality rule: a non-interactive shell
// treats it as fatal, exiting with status; an interactive shell just
// reports it and continues. Only special built-ins call this — regular
// built-ins' usage errors (spec's status-2 `read` included) never exit
// the shell.
func specialUsageError(it *interp.Interp, status int, format string, args ...any) (int, interp.Unwind) {
	warnx(it, format, args...)
	return status, fatalizeUsageError(it, status)
}

// fatalizeUsageError is specialUsageError's Unwind half, for call sites
// that already printed their own per-item diagnostics (e.g. `unset`
// looping over several names) and just need the fatality decision.
func fatalizeUsageError(it *interp.Interp, status int) interp.Unwind {
	if it.Env.Options.Interactive {
		return interp.None
	}
	return interp.Unwind{Kind: interp.UnwindExit, Status: status}
}

// discardWriter silences pflag's own usage/error printing; built-ins
// report flag-parsing failures themselves via warnx instead.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
