// Package shell implements the top-level loop spec.md §4.1 names: the
// read/parse/execute cycle that drives an Interp from either an
// interactive terminal or a non-interactive script/stdin source.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/parse"
	"github.com/possh/possh/internal/token"
	"github.com/possh/possh/internal/ui"
)

// Shell is the top-level loop: it owns the line-editing/history source
// and repeatedly feeds lines to the parser, executing each complete
// command against a single long-lived Interp.
type Shell struct {
	it          *interp.Interp
	interactive bool

	rl     *readline.Instance
	reader *bufio.Reader

	stopSignals func()
}

// New builds a Shell. When interactive is true, input comes from a
// chzyer/readline instance with history persisted at historyPath;
// otherwise lines are read from src with no editing or history.
func New(it *interp.Interp, interactive bool, historyPath string, src io.Reader) (*Shell, error) {
	sh := &Shell{it: it, interactive: interactive}

	if interactive {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "$ ",
			HistoryFile:     historyPath,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return nil, err
		}
		sh.rl = rl
	} else {
		sh.reader = bufio.NewReader(src)
	}

	sh.stopSignals = sh.installSignalForwarding()

	return sh, nil
}

// Close releases the line-editing resources, if any, and stops signal
// forwarding.
func (sh *Shell) Close() {
	if sh.stopSignals != nil {
		sh.stopSignals()
	}
	if sh.rl != nil {
		sh.rl.Close()
	}
}

// Run drives the top-level read/parse/execute loop to completion,
// running the EXIT trap once on the way out, and returns the exit
// status to report from main (spec.md §6's exit code table).
func (sh *Shell) Run() int {
	defer sh.it.RunExitTrap()

	next := sh.nextLine
	p := parse.New(token.NextLine(next))

	status := 0
	for {
		if sh.interactive {
			sh.rl.SetPrompt(ui.RenderPrompt(sh.it.Env.Pwd(), status))
		}

		tree, result, msg := p.Parse()
		if result == parse.Syntax {
			fmt.Fprintf(sh.it.Stderr(), "possh: syntax error: %s\n", msg)
			if !sh.interactive {
				return 2
			}
			continue
		}
		if result == parse.NoCommand {
			return status
		}

		var uw interp.Unwind
		status, uw = sh.it.ExecuteComplete(tree)
		sh.it.SetLastStatus(status)
		if uw.Kind == interp.UnwindExit {
			return uw.Status
		}
	}
}

// nextLine implements token.NextLine: newCommand is true when the
// tokenizer is starting a fresh command rather than continuing one
// across a line for quoting/here-doc reasons, which only matters for
// which prompt an interactive session shows.
func (sh *Shell) nextLine(newCommand bool) (string, bool) {
	if sh.interactive {
		prompt := "$ "
		if !newCommand {
			prompt = "> "
		}
		sh.rl.SetPrompt(prompt)
		line, err := sh.rl.Readline()
		if err != nil {
			return "", false
		}
		return line, true
	}

	line, err := sh.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSuffix(line, "\n"), true
}
