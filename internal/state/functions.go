package state

import "github.com/possh/possh/internal/ast"

// Function is a named, installed function body. Refcount-respecting
// free mirrors the teacher's mock-registry Register/Registry pattern,
// generalized so a running invocation keeps its own reference even if
// `unset -f` removes the table's entry out from under it (spec §3, §9).
type Function struct {
	Name     string
	Body     *ast.Command
	refcount int
}

// Retain increments the function's refcount; a running invocation calls
// this once on entry.
func (f *Function) Retain() { f.refcount++ }

// Release decrements the function's refcount; a running invocation
// calls this once when it returns, pairing its Retain.
func (f *Function) Release() { f.refcount-- }

// FunctionTable is the shell's function registry, keyed by NAME.
type FunctionTable struct {
	byName map[string]*Function
}

// NewFunctionTable returns an empty function table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{byName: make(map[string]*Function)}
}

// Define installs or replaces the function named name. Replacing an
// in-use function only detaches it from the table; any invocation
// already holding a reference keeps running against the old body.
func (t *FunctionTable) Define(name string, body *ast.Command) {
	t.byName[name] = &Function{Name: name, Body: body}
}

// Lookup returns the function named name, or nil if undefined.
func (t *FunctionTable) Lookup(name string) *Function {
	return t.byName[name]
}

// Remove detaches name from the table. A function currently executing
// (and holding its own reference via Retain) continues to run; its body
// is simply no longer reachable by new invocations.
func (t *FunctionTable) Remove(name string) {
	delete(t.byName, name)
}

// Names returns every defined function name.
func (t *FunctionTable) Names() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	return out
}
