package interp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/expand"
	"github.com/possh/possh/internal/parse"
	"github.com/possh/possh/internal/token"
)

// expandHeredocBody expands an unquoted here-document body: parameter
// and command expansion run ("$((...))" is left literal, as arithmetic
// expansion is not implemented), but quote removal is skipped
// (spec §4.4's NO_QUOTES flag) so a literal `"` or `'` in the body
// passes through untouched, and no field splitting or globbing applies.
func (it *Interp) expandHeredocBody(body string) (string, error) {
	fields, err := expand.Expand(it, expand.Word{Text: body}, expand.NoQuotes|expand.NoFieldSplit)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// expandWords expands a simple command's argument words with full field
// splitting and, unless noglob is set, pathname expansion (spec §4.5
// step 1). The "declaration utility" special case (only `export`
// qualifies) disables field splitting for a NAME=value argument.
func (it *Interp) expandWords(cmdName string, words []ast.Word) ([]string, error) {
	var out []string
	isDeclUtil := cmdName == "export"
	for _, w := range words {
		flags := expand.Pathnames
		if isDeclUtil && isAssignmentLike(w) {
			flags |= expand.NoFieldSplit
		}
		fields, err := expand.Expand(it, toExpandWord(w), flags)
		if err != nil {
			return nil, err
		}
		out = append(out, fields...)
	}
	return out, nil
}

func isAssignmentLike(w ast.Word) bool {
	if w.Quoted {
		return false
	}
	idx := strings.IndexByte(w.Text, '=')
	if idx <= 0 {
		return false
	}
	return isNameLike(w.Text[:idx])
}

func isNameLike(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || (i > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func toExpandWord(w ast.Word) expand.Word { return expand.Word{Text: w.Text, Quoted: w.Quoted} }

// expandAssignValue expands an assignment's right-hand side without
// field splitting (spec §4.5 step 3).
func (it *Interp) expandAssignValue(w ast.Word) (string, error) {
	return expand.ExpandWord(it, toExpandWord(w))
}

// expandRedirOperand expands a redirection's operand word (spec §4.5
// step 2); here-doc-quoted operands are already-collected literal text
// and skip expansion entirely.
func (it *Interp) expandRedirOperand(r ast.Redirection) (ast.Redirection, error) {
	if r.Kind == ast.HereDoc || r.Kind == ast.HereDocQuoted {
		return r, nil
	}
	expanded, err := expand.ExpandWord(it, expand.Word{Text: r.Operand})
	if err != nil {
		return r, err
	}
	r.Operand = expanded
	return r, nil
}

// runCommandSubst executes src as a script (spec §4.4's `$(...)`/`` ` ``
// collaborator) with stdout captured, trimming trailing newlines per
// POSIX command substitution.
func (it *Interp) runCommandSubst(src string) (string, error) {
	var buf bytes.Buffer
	child := it.fork()
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	child.fds[1] = w

	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	lines := strings.Split(src, "\n")
	idx := 0
	next := func(bool) (string, bool) {
		if idx >= len(lines) {
			return "", false
		}
		l := lines[idx]
		idx++
		return l, true
	}

	p := parse.New(token.NextLine(next))
	for {
		tree, result, msg := p.Parse()
		if result == parse.Syntax {
			w.Close()
			<-done
			return "", fmt.Errorf("syntax error: %s", msg)
		}
		if result == parse.NoCommand {
			break
		}
		_, uw := child.ExecuteComplete(tree)
		if uw.Kind == UnwindExit {
			break
		}
	}
	w.Close()
	<-done

	out := buf.String()
	out = strings.TrimRight(out, "\n")
	return out, nil
}
