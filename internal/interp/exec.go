package interp

import (
	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/expand"
)

// ExecuteComplete drives one ast.CompleteCommand to completion, spec
// §4.5's top-level `execute`. The returned Unwind is almost always None
// or UnwindExit/UnwindReexec by the time it reaches the top-level loop —
// break/continue/return never escape a well-formed tree, but a
// malformed one (e.g. `break` outside a loop) degrades to a built-in
// usage error rather than an uncaught unwind.
func (it *Interp) ExecuteComplete(cc *ast.CompleteCommand) (int, Unwind) {
	return it.ExecuteList(cc.Body)
}

// ExecuteList implements spec §4.5's execute_list: run each pipeline in
// turn, short-circuiting on `&&`/`||`, updating LastStatus after each,
// and stopping immediately (without consuming later pipelines' side
// effects) the moment an Unwind becomes pending.
func (it *Interp) ExecuteList(list *ast.List) (int, Unwind) {
	skip := false
	for i, pl := range list.Pipelines {
		if skip {
			skip = false
			continue
		}
		status, uw := it.ExecutePipeline(pl)
		it.SetLastStatus(status)
		if uw.Kind != UnwindNone {
			return status, uw
		}
		if it.Env.Options.Errexit && status != 0 && i == len(list.Pipelines)-1 {
			return status, Unwind{Kind: UnwindExit, Status: status}
		}
		if i < len(list.Separators) {
			switch list.Separators[i] {
			case ast.And:
				skip = status != 0
			case ast.Or:
				skip = status == 0
			}
		}
	}
	return it.LastStatus(), None
}

// ExecutePipeline implements spec §4.5's execute_pipeline: a single
// command runs inline (no fork); N>1 commands each run in a distinct
// process per spec §3's invariant, realized here as an independent
// forked Interp per stage connected by os.Pipe and run concurrently —
// the generalization of the teacher's goroutine-fan-out
// executePipeline, widened to arbitrary command kinds instead of only
// external cloud commands.
func (it *Interp) ExecutePipeline(pl *ast.Pipeline) (int, Unwind) {
	var status int
	var uw Unwind
	if len(pl.Commands) == 1 {
		status, uw = it.ExecuteCommand(pl.Commands[0])
	} else {
		status = it.executeMultiStagePipeline(pl.Commands)
	}
	if pl.Negated {
		status = negateStatus(status)
	}
	return status, uw
}

func negateStatus(status int) int {
	if status == 0 {
		return 1
	}
	return 0
}

// ExecuteCommand implements spec §4.5's execute_command: fire due traps,
// then dispatch on the command's kind, applying (and restoring) the
// command's own redirections around compound bodies.
func (it *Interp) ExecuteCommand(cmd *ast.Command) (int, Unwind) {
	if uw := it.firePendingTraps(); uw.Kind != UnwindNone {
		return it.LastStatus(), uw
	}

	if cmd.Kind == ast.KindSimple {
		return it.ExecuteSimpleCommand(cmd.Simple)
	}

	mark := it.RedirMark()
	if err := it.ApplyRedirs(cmd.Redirs); err != nil {
		it.warnx("%v", err)
		return 1, None
	}
	defer it.PopRedirsTo(mark)

	switch cmd.Kind {
	case ast.KindBraceGroup:
		return it.ExecuteList(cmd.Body)
	case ast.KindSubshell:
		return it.executeSubshell(cmd.Body)
	case ast.KindFor:
		return it.executeFor(cmd)
	case ast.KindIf:
		return it.executeIf(cmd)
	case ast.KindWhile:
		return it.executeWhileUntil(cmd, false)
	case ast.KindUntil:
		return it.executeWhileUntil(cmd, true)
	case ast.KindCase:
		return it.executeCase(cmd)
	case ast.KindFunctionDef:
		it.Env.Funcs.Define(cmd.FuncName, cmd.FuncBody)
		return 0, None
	}
	return 1, None
}

// executeSubshell runs body in a forked Interp: variable, option, and
// directory changes it makes are invisible to the parent (spec §3's
// Subshell lifecycle note; spec §8's "nested subshells to 16 levels"
// boundary test is just ordinary Go call-stack recursion here).
func (it *Interp) executeSubshell(body *ast.List) (int, Unwind) {
	child := it.fork()
	status, uw := child.ExecuteList(body)
	if uw.Kind == UnwindExit {
		return uw.Status, None
	}
	return status, None
}

func (it *Interp) executeIf(cmd *ast.Command) (int, Unwind) {
	for _, arm := range cmd.IfArms {
		if arm.Cond == nil {
			return it.ExecuteList(arm.Body)
		}
		status, uw := it.ExecuteList(arm.Cond)
		if uw.Kind != UnwindNone {
			return status, uw
		}
		if status == 0 {
			return it.ExecuteList(arm.Body)
		}
	}
	return 0, None
}

func (it *Interp) executeWhileUntil(cmd *ast.Command, until bool) (int, Unwind) {
	it.loopCounter++
	defer func() { it.loopCounter-- }()

	status := 0
	for {
		condStatus, uw := it.ExecuteList(cmd.WhileCond)
		if uw.Kind != UnwindNone {
			return condStatus, uw
		}
		truth := condStatus == 0
		if truth == until {
			break
		}
		bodyStatus, uw := it.ExecuteList(cmd.WhileBody)
		status = bodyStatus
		if uw.Kind == UnwindBreak {
			if stop, rest := uw.consumeLoop(); stop {
				if rest.Kind != UnwindNone {
					return status, rest
				}
				break
			}
		} else if uw.Kind == UnwindContinue {
			if stop, rest := uw.consumeLoop(); stop {
				if rest.Kind != UnwindNone {
					return status, rest
				}
				continue
			}
		} else if uw.Kind != UnwindNone {
			return status, uw
		}
	}
	return status, None
}

func (it *Interp) executeFor(cmd *ast.Command) (int, Unwind) {
	it.loopCounter++
	defer func() { it.loopCounter-- }()

	var items []string
	if cmd.ForWords != nil {
		for _, w := range cmd.ForWords {
			fields, err := expand.Expand(it, toExpandWord(w), expand.Pathnames)
			if err != nil {
				it.warnx("%v", err)
				return 1, None
			}
			items = append(items, fields...)
		}
	} else {
		items = it.Env.Positional()
	}

	status := 0
	for _, item := range items {
		if err := it.Env.Set(cmd.ForName, item, false); err != nil {
			it.warnx("%v", err)
			return 1, None
		}
		bodyStatus, uw := it.ExecuteList(cmd.ForBody)
		status = bodyStatus
		if uw.Kind == UnwindBreak {
			if stop, rest := uw.consumeLoop(); stop {
				if rest.Kind != UnwindNone {
					return status, rest
				}
				break
			}
		} else if uw.Kind == UnwindContinue {
			if stop, rest := uw.consumeLoop(); stop {
				if rest.Kind != UnwindNone {
					return status, rest
				}
				continue
			}
		} else if uw.Kind != UnwindNone {
			return status, uw
		}
	}
	return status, None
}

func (it *Interp) executeCase(cmd *ast.Command) (int, Unwind) {
	word, err := expand.ExpandWord(it, toExpandWord(cmd.CaseWord))
	if err != nil {
		it.warnx("%v", err)
		return 1, None
	}

	status := 0
	run := false
	for _, item := range cmd.CaseItems {
		if !run {
			matched := false
			for _, pat := range item.Patterns {
				patText, err := expand.ExpandWord(it, toExpandWord(pat))
				if err != nil {
					continue
				}
				if expand.Matches(word, patText) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if item.Body != nil {
			var uw Unwind
			status, uw = it.ExecuteList(item.Body)
			if uw.Kind != UnwindNone {
				return status, uw
			}
		}
		if item.Fallthrough {
			run = true
			continue
		}
		return status, None
	}
	return status, None
}

// loopDepth reports the count of lexically active loop frames, spec
// §3's loopCounter invariant.
func (it *Interp) loopDepth() int { return it.loopCounter }
