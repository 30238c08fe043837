package builtin

import (
	"fmt"

	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/parse"
	"github.com/spf13/pflag"
)

func init() {
	interp.RegisterBuiltin(&interp.BuiltinEntry{Name: "command", Special: false, Fn: commandBuiltin})
}

// commandBuiltin is grounded on dxsh's builtins/command.c: `-p` forces
// the standard search path, `-v`/`-V` print terse/verbose resolution
// instead of running anything, and with neither the next argument runs
// bypassing shell-function lookup (spec §4.6).
func commandBuiltin(it *interp.Interp, args []string) (int, interp.Unwind) {
	fs := pflag.NewFlagSet("command", pflag.ContinueOnError)
	fs.SetOutput(discardWriter{})
	standardPath := fs.BoolP("standard-path", "p", false, "use the standard search path")
	printTerse := fs.BoolP("identify", "v", false, "print a description of how the name would be resolved")
	printVerbose := fs.BoolP("verbose-identify", "V", false, "print a more verbose description")
	if err := fs.Parse(args[1:]); err != nil {
		warnx(it, "command: %v", err)
		return 1, interp.None
	}

	if *printTerse && *printVerbose {
		warnx(it, "command: the '-v' and '-V' options are mutually exclusive")
		return 1, interp.None
	}

	rest := fs.Args()

	if *printTerse || *printVerbose {
		return describeCommand(it, rest, *standardPath, *printVerbose)
	}

	if len(rest) == 0 {
		warnx(it, "command: missing operand")
		return 1, interp.None
	}

	return it.RunCommandBypassingFunctions(rest, *standardPath)
}

func describeCommand(it *interp.Interp, rest []string, standardPath, verbose bool) (int, interp.Unwind) {
	if len(rest) == 0 {
		warnx(it, "command: missing operand")
		return 1, interp.None
	}
	if len(rest) > 1 {
		warnx(it, "command: too many arguments")
		return 1, interp.None
	}

	name := rest[0]
	out := it.Stdout()

	if parse.IsReservedWord(name) {
		if verbose {
			fmt.Fprintf(out, "%s is a shell reserved word\n", name)
		} else {
			fmt.Fprintln(out, name)
		}
		return 0, interp.None
	}

	if fn := it.Env.Funcs.Lookup(name); fn != nil {
		if verbose {
			fmt.Fprintf(out, "%s is a shell function\n", name)
		} else {
			fmt.Fprintln(out, name)
		}
		return 0, interp.None
	}

	if e, ok := interp.LookupBuiltin(name); ok {
		if verbose {
			kind := "builtin"
			if e.Special {
				kind = "special builtin"
			}
			fmt.Fprintf(out, "%s is a shell %s\n", name, kind)
		} else {
			fmt.Fprintln(out, name)
		}
		return 0, interp.None
	}

	var path string
	var err error
	if standardPath {
		path, err = it.ResolvePathStandard(name)
	} else {
		path, err = it.ResolvePath(name)
	}
	if err != nil {
		if verbose {
			warnx(it, "command: '%s': not found", name)
		}
		return 1, interp.None
	}
	if verbose {
		fmt.Fprintf(out, "%s is %s\n", name, path)
	} else {
		fmt.Fprintln(out, path)
	}
	return 0, interp.None
}
