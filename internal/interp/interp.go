// Package interp is the executor of spec §4.5: it walks an
// ast.CompleteCommand, expanding words via internal/expand, managing
// process creation and pipes, wiring redirection save/restore, and
// running loop/conditional/function/pipeline control flow. It is the
// generalized descendant of the teacher's internal/shell.Pipeline.Execute
// family, widened from a flat pipe-only model to the full grammar.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/expand"
	"github.com/possh/possh/internal/state"
)

// Interp is one running shell instance: its environment, its currently
// visible file descriptors 0..9 (spec §5's "user-visible namespace"),
// and the handful of counters that make control flow observable without
// exceptions.
type Interp struct {
	Env *state.Env

	fds    [10]*os.File
	redirs redirStack

	status      int
	loopCounter int

	// callDepth counts nested function invocations and dot-sourced
	// scripts; `return` (spec §4.6) is only valid while this is nonzero.
	callDepth int

	// InSubshell marks an Interp forked off for a "(...)" group or a
	// stage of a multi-stage pipeline: variable/option/cwd changes made through
	// it never propagate back (spec §3's Subshell lifecycle note).
	InSubshell bool

	// PendingScript is not set anywhere in this package; the ENOEXEC
	// fallback (spec §4.5, §9) is handled by reinterpretAsScript instead.
	PendingScript string

	pid int

	// tracer receives an xtrace line per simple command when -x is set;
	// nil disables tracing output entirely (kept separate from Stderr()
	// so command-substitution Interps, which share PID but not fds with
	// their parent, still trace to the real terminal).
	tracer io.Writer

	// pipeGroup is non-nil only on the per-stage Interps executeMultiStagePipeline
	// forks under `monitor`, shared by every stage of that one pipeline so
	// their external processes land in a single process group (spec §4.5
	// steps 1-2, §5).
	pipeGroup *pipelineGroup
}

// New builds a top-level Interp wired to the process's real stdio.
func New(env *state.Env) *Interp {
	it := &Interp{Env: env, pid: os.Getpid()}
	it.fds[0] = os.Stdin
	it.fds[1] = os.Stdout
	it.fds[2] = os.Stderr
	it.tracer = os.Stderr
	return it
}

// Fd returns the *os.File currently bound to user-visible descriptor n,
// or nil if n is closed.
func (it *Interp) Fd(n int) *os.File {
	if n < 0 || n >= len(it.fds) {
		return nil
	}
	return it.fds[n]
}

// Stdin, Stdout, Stderr are the conventional fds 0/1/2, falling back to
// the real process stdio when somehow nil (never reassigned and never
// closed by redirection pop).
func (it *Interp) Stdin() io.Reader {
	if it.fds[0] != nil {
		return it.fds[0]
	}
	return os.Stdin
}

func (it *Interp) Stdout() io.Writer {
	if it.fds[1] != nil {
		return it.fds[1]
	}
	return os.Stdout
}

func (it *Interp) Stderr() io.Writer {
	if it.fds[2] != nil {
		return it.fds[2]
	}
	return os.Stderr
}

// warnx mirrors the teacher's/original's warnx-style diagnostic: program
// name, message, newline, to the current stderr fd.
func (it *Interp) warnx(format string, args ...any) {
	fmt.Fprintf(it.Stderr(), "possh: %s\n", fmt.Sprintf(format, args...))
}

// fork returns a shallow copy of it suitable for a subshell or a
// stage of a multi-stage pipeline: a cloned Env (so variable/option/function
// changes don't propagate back) sharing the same fd table by value (fds
// are then independently redirected by the caller).
func (it *Interp) fork() *Interp {
	child := *it
	child.Env = it.Env.Clone()
	child.InSubshell = true
	child.loopCounter = 0
	child.callDepth = 0
	child.redirs = redirStack{}
	child.pipeGroup = nil
	return &child
}

// ---- expand.Context ----

func (it *Interp) Lookup(name string) (string, bool) { return it.Env.Get(name) }
func (it *Interp) Positional() []string              { return it.Env.Positional() }
func (it *Interp) Arg0() string                       { return it.Env.Arg0() }
func (it *Interp) ShellPID() int                      { return it.pid }
func (it *Interp) Noglob() bool                       { return it.Env.Options.Noglob }
func (it *Interp) Nounset() bool                      { return it.Env.Options.Nounset }

// LastStatus returns $? — the exit status of the most recently completed
// pipeline (spec §3's lastStatus control flag).
func (it *Interp) LastStatus() int { return it.status }

// SetLastStatus updates $?, called after every pipeline completes.
func (it *Interp) SetLastStatus(v int) { it.status = v }

func (it *Interp) RunCommandSubst(src string) (string, error) {
	return it.runCommandSubst(src)
}

var _ expand.Context = (*Interp)(nil)
