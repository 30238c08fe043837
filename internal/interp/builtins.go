package interp

// BuiltinFunc is one built-in's entry point: it receives the already
// word-expanded argv (argv[0] is the built-in's own name) and the
// running Interp, and returns an exit status plus any pending control
// unwind (break/continue/return/exit — spec §4.6's special built-ins).
type BuiltinFunc func(it *Interp, args []string) (int, Unwind)

// BuiltinEntry is one row of spec §4.6's static registry.
type BuiltinEntry struct {
	Name    string
	Special bool
	Fn      BuiltinFunc
}

// builtinRegistry is populated by internal/builtin's init() functions
// via RegisterBuiltin, kept in this package (rather than the reverse)
// so the executor never imports the built-ins package directly —
// avoiding the import cycle built-ins-need-Interp/Interp-needs-built-ins,
// the same registration-by-side-effect shape as the teacher's
// internal/commands.Register + cmd/drime's blank import.
var builtinRegistry = map[string]*BuiltinEntry{}

// RegisterBuiltin installs e into the registry, keyed by e.Name.
func RegisterBuiltin(e *BuiltinEntry) {
	builtinRegistry[e.Name] = e
}

// LookupBuiltin returns the built-in named name, if any.
func LookupBuiltin(name string) (*BuiltinEntry, bool) {
	e, ok := builtinRegistry[name]
	return e, ok
}
