package builtin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/ui"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "trap", Special: true, Fn: trapBuiltin})
}

// signalNumbers maps the signal names spec §4.6's `trap` accepts (with or
// without a `SIG` prefix) to their POSIX numbers, plus the pseudo-signal
// "EXIT" at 0 for shell-termination handlers.
var signalNumbers = map[string]int{
	"EXIT": 0, "HUP": 1, "INT": 2, "QUIT": 3, "ILL": 4, "TRAP": 5,
	"ABRT": 6, "BUS": 7, "FPE": 8, "KILL": 9, "USR1": 10, "SEGV": 11,
	"USR2": 12, "PIPE": 13, "ALRM": 14, "TERM": 15, "CHLD": 17,
	"CONT": 18, "STOP": 19, "TSTP": 20, "TTIN": 21, "TTOU": 22,
}

var signalOrder = []string{
	"EXIT", "HUP", "INT", "QUIT", "ILL", "TRAP", "ABRT", "BUS", "FPE",
	"KILL", "USR1", "SEGV", "USR2", "PIPE", "ALRM", "TERM", "CHLD",
	"CONT", "STOP", "TSTP", "TTIN", "TTOU",
}

func canonicalSignal(it *interp.Interp, name string) (string, bool) {
	if n, err := strconv.Atoi(name); err == nil {
		for sig, num := range signalNumbers {
			if num == n {
				return sig, true
			}
		}
		return "", false
	}
	upper := strings.ToUpper(name)
	upper = strings.TrimPrefix(upper, "SIG")
	if _, ok := signalNumbers[upper]; ok {
		return upper, true
	}
	return "", false
}

// trapBuiltin implements `trap [-lp] [action condition...]` (spec §4.6):
// `-l` lists recognized signal names and numbers, `-p` (or bare `trap`)
// prints currently installed handlers in a form suitable for re-input,
// and `trap action condition...` installs action (an empty string means
// ignore, `-` means restore the default disposition) for every named
// condition.
func trapBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	i := 1
	listOnly, printOnly := false, false
	for ; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' || arg == "--" {
			break
		}
		for _, c := range arg[1:] {
			switch c {
			case 'l':
				listOnly = true
			case 'p':
				printOnly = true
			default:
				return specialUsageError(it, 1, "trap: invalid option '-%c'", c)
			}
		}
		i++
		break
	}

	if listOnly {
		printSignalList(it)
		return 0, interp.None
	}

	rest := args[i:]

	if printOnly || len(rest) == 0 {
		printTraps(it, rest)
		return 0, interp.None
	}

	action := rest[0]
	conditions := rest[1:]
	if len(conditions) == 0 {
		return specialUsageError(it, 2, "trap: missing condition operand")
	}

	success := true
	for _, cond := range conditions {
		sig, ok := canonicalSignal(it, cond)
		if !ok {
			warnx(it, "trap: '%s': invalid condition", cond)
			success = false
			continue
		}
		if action == "-" {
			it.Env.Traps.Clear(sig)
		} else {
			it.Env.Traps.Set(sig, action)
		}
	}
	if success {
		return 0, interp.None
	}
	return 1, fatalizeUsageError(it, 1)
}

func printSignalList(it *interp.Interp) {
	table := ui.NewTable(it.Stdout())
	table.SetAlign(0, ui.AlignRight)
	for _, sig := range signalOrder {
		table.AddRow(fmt.Sprintf("%d)", signalNumbers[sig]), "SIG"+sig)
	}
	table.Render()
}

func printTraps(it *interp.Interp, names []string) {
	out := it.Stdout()
	targets := names
	if len(targets) == 0 {
		targets = nil
		for sig := range it.Env.Traps.All() {
			targets = append(targets, sig)
		}
		sort.Strings(targets)
	}
	for _, name := range targets {
		sig, ok := canonicalSignal(it, name)
		if !ok {
			continue
		}
		if action, ok := it.Env.Traps.Action(sig); ok {
			fmt.Fprintf(out, "trap -- %s %s\n", shQuote(action), sig)
		}
	}
}
