package interp

// UnwindKind tags the non-local control-flow signal spec §9 recommends
// threading as a tagged return value instead of exceptions:
// Result<status, Unwind> with Unwind in { Break(n), Continue(n),
// Return(status), Exit(status) }.
type UnwindKind int

const (
	UnwindNone UnwindKind = iota
	UnwindBreak
	UnwindContinue
	UnwindReturn
	UnwindExit
	// UnwindReexec names the ENOEXEC fallback of spec §4.5/§9. Nothing
	// in this module produces or handles it: reinterpretAsScript deals
	// with ENOEXEC where the exec fails.
	UnwindReexec
)

// Unwind bundles numBreaks/numContinues/returning/lastStatus (spec §3,
// §9) into the single threaded value the spec's design notes suggest, in
// place of module-level globals.
type Unwind struct {
	Kind   UnwindKind
	Depth  int // remaining loops to unwind, for Break/Continue
	Status int // exit status, for Return/Exit
	Script string
}

// None is the zero Unwind: normal, non-branching completion.
var None = Unwind{}

// consumeLoop implements the break/continue depth-clamping rule: the
// innermost loop decrements Depth by one; if it reaches zero the loop
// swallows the unwind and continues normally, otherwise it re-emits the
// same kind with Depth-1 to the enclosing loop.
func (u Unwind) consumeLoop() (stop bool, rest Unwind) {
	if u.Depth <= 1 {
		return true, None
	}
	return true, Unwind{Kind: u.Kind, Depth: u.Depth - 1}
}
