// Package state holds the shell's mutable environment: variables with
// scoped overlays, positional parameters, shell options, the function
// table, and pending traps. It is the generalized descendant of the
// teacher's session.Session: that type tracked one cloud workspace's
// CWD/aliases/vault state, this one tracks a POSIX shell's.
package state

import (
	"fmt"
	"os"
	"regexp"
)

// NameRE matches a valid shell variable/function NAME.
var NameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// IsValidName reports whether s is a valid NAME per NameRE.
func IsValidName(s string) bool {
	return NameRE.MatchString(s)
}

// Variable is one binding: its value and whether it is marked for export
// to the environment of executed utilities.
type Variable struct {
	Name     string
	Value    string
	Exported bool
}

type overlayEntry struct {
	name     string
	had      bool
	previous Variable
}

// Env is the variable store: a persistent global scope plus a stack of
// temporary overlays pushed for assignments preceding a function or
// regular built-in invocation.
type Env struct {
	global map[string]*Variable
	// overlays is a flat undo log; PushOverlay records one entry per
	// assignment, PopOverlaysTo(mark) rewinds to a saved length.
	overlays []overlayEntry

	positional []string
	arg0       string

	// pwd is the logical working directory spec §3/§4.6 describes:
	// textual, `.`/`..`-normalized against the previous logical PWD,
	// never touching the filesystem or resolving symlinks.
	pwd string

	// umask is the file-creation mask `umask` reads/writes (spec §4.6).
	umask uint32

	Options Options
	Funcs   *FunctionTable
	Traps   *TrapTable
}

// NewEnv builds an Env seeded from the process environment, matching the
// teacher's NewSession default-population step.
func NewEnv(arg0 string, args []string) *Env {
	e := &Env{
		global:     make(map[string]*Variable),
		positional: append([]string(nil), args...),
		arg0:       arg0,
		Funcs:      NewFunctionTable(),
		Traps:      NewTrapTable(),
	}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				e.global[kv[:i]] = &Variable{Name: kv[:i], Value: kv[i+1:], Exported: true}
				break
			}
		}
	}
	if _, ok := e.global["IFS"]; !ok {
		e.global["IFS"] = &Variable{Name: "IFS", Value: " \t\n"}
	}
	if wd, err := os.Getwd(); err == nil {
		e.pwd = wd
		e.global["PWD"] = &Variable{Name: "PWD", Value: wd, Exported: true}
	}
	e.umask = 022
	return e
}

// Pwd returns the logical working directory.
func (e *Env) Pwd() string { return e.pwd }

// SetPwd updates the logical working directory and propagates it into
// the PWD variable (spec §3's "pwd is owned by the environment").
func (e *Env) SetPwd(p string) {
	e.pwd = p
	_ = e.Set("PWD", p, true)
}

// Umask returns the current file-creation mask.
func (e *Env) Umask() uint32 { return e.umask }

// SetUmask installs a new file-creation mask.
func (e *Env) SetUmask(m uint32) { e.umask = m }

// Clone returns a deep-enough copy of e for a subshell: its own global
// variable map (so mutation doesn't propagate to the parent) plus its
// own options, positional parameters, pwd, and umask.
// Functions and traps share the underlying tables (spec §9's refcounted
// Function handles are keyed off the defining shell, not cloned per
// subshell) since unset -f / trap in a subshell is not observable by the
// parent anyway — the executor never runs a subshell's built-ins back
// into the parent's Env.
func (e *Env) Clone() *Env {
	c := &Env{
		global:     make(map[string]*Variable, len(e.global)),
		positional: append([]string(nil), e.positional...),
		arg0:       e.arg0,
		pwd:        e.pwd,
		umask:      e.umask,
		Options:    e.Options,
		Funcs:      e.Funcs,
		Traps:      e.Traps,
	}
	for k, v := range e.global {
		cp := *v
		c.global[k] = &cp
	}
	return c
}

// Get returns the effective value of name. PushOverlay writes the
// overlay's value straight into the global scope (and records what to
// restore on pop), so the global scope always holds the topmost-wins
// value; Get needs no separate overlay walk.
func (e *Env) Get(name string) (string, bool) {
	if v, ok := e.global[name]; ok {
		return v.Value, true
	}
	return "", false
}

// IsExported reports whether name currently carries the export flag.
func (e *Env) IsExported(name string) bool {
	if v, ok := e.global[name]; ok {
		return v.Exported
	}
	return false
}

// Set assigns name=value in the global scope per spec §4.3: the export
// flag is set (and the OS environment updated) if the variable was
// already exported, forceExport is true, or the allexport option is on.
func (e *Env) Set(name, value string, forceExport bool) error {
	if !IsValidName(name) {
		return fmt.Errorf("%s: not a valid identifier", name)
	}
	v, ok := e.global[name]
	if !ok {
		v = &Variable{Name: name}
		e.global[name] = v
	}
	v.Value = value
	if forceExport || v.Exported || e.Options.Allexport {
		v.Exported = true
	}
	if v.Exported {
		os.Setenv(name, value)
	}
	return nil
}

// Unset removes name from the global scope (and the OS environment).
func (e *Env) Unset(name string) {
	delete(e.global, name)
	os.Unsetenv(name)
}

// PushOverlay records the previous binding for name (or its absence) and
// then temporarily sets it to value, exported per the same rule as Set.
// It returns the overlay depth after this push; a mark that undoes the
// push is the depth taken before it.
func (e *Env) PushOverlay(name, value string) int {
	prev, had := e.global[name]
	entry := overlayEntry{name: name, had: had}
	if had {
		entry.previous = *prev
	}
	e.overlays = append(e.overlays, entry)
	mark := len(e.overlays)
	_ = e.Set(name, value, false)
	return mark
}

// Mark returns the current overlay-stack depth, to later PopOverlaysTo.
func (e *Env) Mark() int { return len(e.overlays) }

// PopOverlaysTo reverses every overlay pushed since mark, restoring each
// name's previous binding (or removing it if it did not exist before).
func (e *Env) PopOverlaysTo(mark int) {
	for i := len(e.overlays) - 1; i >= mark; i-- {
		entry := e.overlays[i]
		if entry.had {
			v := entry.previous
			e.global[entry.name] = &v
			if v.Exported {
				os.Setenv(entry.name, v.Value)
			}
		} else {
			delete(e.global, entry.name)
			os.Unsetenv(entry.name)
		}
	}
	e.overlays = e.overlays[:mark]
}

// Exported returns every currently exported variable as NAME=VALUE
// pairs, the set handed to a forked external utility's environment.
func (e *Env) Exported() []string {
	out := make([]string, 0, len(e.global))
	for _, v := range e.global {
		if v.Exported {
			out = append(out, v.Name+"="+v.Value)
		}
	}
	return out
}

// All returns every currently visible variable (used by the bare
// `export`/`set` listings).
func (e *Env) All() []*Variable {
	out := make([]*Variable, 0, len(e.global))
	for _, v := range e.global {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

// IFS returns the effective field-separator value, defaulting to the
// POSIX default when unset.
func (e *Env) IFS() string {
	if v, ok := e.Get("IFS"); ok {
		return v
	}
	return " \t\n"
}

// Positional parameter access.

// Arg0 returns $0.
func (e *Env) Arg0() string { return e.arg0 }

// SetArg0 sets $0, used when a function is invoked (arguments[0]
// preserved per spec §4.5) or a script is executed.
func (e *Env) SetArg0(v string) { e.arg0 = v }

// Positional returns the current $1..$N vector.
func (e *Env) Positional() []string { return e.positional }

// SetPositional replaces the positional parameter vector, used by `set
// --` and function invocation.
func (e *Env) SetPositional(args []string) {
	e.positional = append([]string(nil), args...)
}

// Shift drops the first n positional parameters. n==0 is a no-op; it is
// an error to shift more than len(positional).
func (e *Env) Shift(n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 || n > len(e.positional) {
		return fmt.Errorf("shift count out of range")
	}
	e.positional = e.positional[n:]
	return nil
}

// PushPositionalFrame swaps in a new positional-parameter vector (and
// $0) for a function invocation, returning a restore function.
func (e *Env) PushPositionalFrame(arg0 string, args []string) func() {
	savedArg0, savedArgs := e.arg0, e.positional
	e.arg0 = arg0
	e.positional = append([]string(nil), args...)
	return func() {
		e.arg0 = savedArg0
		e.positional = savedArgs
	}
}
