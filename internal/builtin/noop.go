// Package builtin registers spec §4.6's fixed built-in registry against
// internal/interp's RegisterBuiltin registry, generalized from the teacher's
// internal/commands.Registry/Register/Get (name -> entrypoint map,
// populated by each file's init()) with the special/regular distinction
// spec §4.6 adds on top.
package builtin

import "github.com/possh/possh/internal/interp"

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: ":", Special: true, Fn: colon})
}

// colon is the null command: no-op, status 0 (spec §4.6).
func colon(it *interp.Interp, args []string) (int, interp.Unwind) {
	return 0, interp.None
}
