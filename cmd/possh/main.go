// Command possh is the CLI entry point for the shell: `possh [options]
// [script [args...]]` per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/possh/possh/internal/config"
	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/shell"
	"github.com/possh/possh/internal/state"
	"golang.org/x/term"

	_ "github.com/possh/possh/internal/builtin"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opts := state.Options{}
	var optO []string // queued `-o NAME`/`+o NAME` long option names, applied after parsing
	var optOValue []bool
	monitor := false

	i := 0
loop:
	for ; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "--help" {
			printUsage(os.Stdout)
			return 0
		}
		if arg == "--version" {
			fmt.Println(version)
			return 0
		}
		if len(arg) < 2 || (arg[0] != '-' && arg[0] != '+') {
			break
		}

		plus := arg[0] == '+'
		for j := 1; j < len(arg); j++ {
			c := arg[j]
			switch c {
			case 'i':
				opts.Interactive = !plus
			case 's':
				opts.StdInput = !plus
			case 'm':
				monitor = !plus
			case 'c':
				fmt.Fprintln(os.Stderr, "possh: -c: not yet implemented")
				return 2
			case 'o':
				if j != len(arg)-1 {
					fmt.Fprintf(os.Stderr, "possh: unexpected '%c' after %co\n", arg[j+1], arg[0])
					return 2
				}
				i++
				if i >= len(argv) {
					fmt.Fprintln(os.Stderr, "possh: option requires an argument -- 'o'")
					return 2
				}
				optO = append(optO, argv[i])
				optOValue = append(optOValue, !plus)
				continue loop
			default:
				if !opts.SetShort(c, !plus) {
					fmt.Fprintf(os.Stderr, "possh: %c%c: invalid option\n", arg[0], c)
					return 2
				}
			}
		}
	}

	for k, name := range optO {
		if name == "monitor" {
			monitor = optOValue[k]
			continue
		}
		if !opts.SetLong(name, optOValue[k]) {
			fmt.Fprintf(os.Stderr, "possh: %s: invalid option name\n", name)
			return 2
		}
	}
	opts.Monitor = monitor

	scriptArgs := argv[i:]
	var scriptPath string
	var arg0 string
	if len(scriptArgs) > 0 && !opts.StdInput {
		scriptPath = scriptArgs[0]
		scriptArgs = scriptArgs[1:]
		arg0 = scriptPath
	} else {
		arg0 = "possh"
	}

	if scriptPath == "" && !opts.StdInput {
		opts.Interactive = opts.Interactive || (term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())))
	}

	env := state.NewEnv(arg0, scriptArgs)
	env.Options = opts
	if p, ok := env.Get("PATH"); !ok || p == "" {
		cfg, err := config.Load()
		if err == nil {
			env.Set("PATH", cfg.FallbackPath, true)
		}
	}

	it := interp.New(env)

	var src *os.File = os.Stdin
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "possh: %s: %v\n", scriptPath, err)
			return 127
		}
		defer f.Close()
		src = f
	}

	historyPath := ""
	if opts.Interactive {
		if cfg, err := config.Load(); err == nil {
			historyPath, _ = cfg.EffectiveHistoryPath()
		}
	}

	sh, err := shell.New(it, opts.Interactive, historyPath, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "possh: %v\n", err)
		return 1
	}
	defer sh.Close()

	return sh.Run()
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "usage: possh [-abCefhmnuvx] [+abCefhmnuvx] [-o option] [+o option] [-i] [-s] [script [arg...]]")
}
