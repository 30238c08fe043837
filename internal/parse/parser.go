// Package parse implements the recursive-descent parser of spec §4.2: it
// consumes the token.Lexer's output and builds an ast.CompleteCommand,
// transparently requesting more input both for lexically unbalanced
// lines (quotes, here-docs) and for grammatically incomplete constructs
// (an unterminated if/for/while/case/brace-group/subshell).
package parse

import (
	"fmt"
	"strings"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/token"
)

// Result is the parser's outer verdict, matching spec §4.2's three
// outputs: Match, NoCommand, Syntax.
type Result int

const (
	Match Result = iota
	NoCommand
	Syntax
)

func (r Result) String() string {
	switch r {
	case Match:
		return "Match"
	case NoCommand:
		return "NoCommand"
	case Syntax:
		return "Syntax"
	default:
		return "?"
	}
}

// syntaxErr is the sentinel used internally to unwind a parse failure up
// to Parse, which converts it into a Syntax result rather than an error
// return — mirroring the tokenizer's own Done/NeedInput/Error contract
// one layer up.
type syntaxErr struct{ msg string }

func (e *syntaxErr) Error() string { return e.msg }

// Parser drives token.Lexer/NextLine to build one ast.CompleteCommand at
// a time. One Parser serves a whole input source: each Parse call returns
// the next complete_command, generalizing the teacher's one-shot
// shell.ParsePipeline(line) entry point to span lines.
type Parser struct {
	next token.NextLine
	lx   *token.Lexer
	toks []token.Token
	pos  int
	eof  bool

	heredocs []string
}

// New returns a Parser that pulls lines from next as needed.
func New(next token.NextLine) *Parser {
	return &Parser{next: next, lx: token.NewLexer()}
}

// Parse runs the parser to completion, returning the resulting tree (on
// Match), or a message (on Syntax), or neither (on NoCommand). Blank
// lines before a command are skipped; NoCommand means the input ended
// without one.
func (p *Parser) Parse() (*ast.CompleteCommand, Result, string) {
	for {
		if !p.fill(true) {
			return nil, NoCommand, ""
		}
		if !p.onlyBlankLine() {
			break
		}
		p.pos++
	}

	var tree *ast.CompleteCommand
	var perr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if se, ok := r.(*syntaxErr); ok {
					perr = se
					return
				}
				panic(r)
			}
		}()
		list := p.parseList(nil, true)
		tree = &ast.CompleteCommand{Body: list}
	}()

	if perr != nil {
		return nil, Syntax, perr.Error()
	}
	return tree, Match, ""
}

// onlyBlankLine reports whether the first fetched line tokenized to
// nothing but the terminating newline (an empty or whitespace-only
// line), spec §8's NoCommand boundary case.
func (p *Parser) onlyBlankLine() bool {
	return len(p.toks)-p.pos == 1 && p.toks[p.pos].Kind == token.Operator && p.toks[p.pos].Text == "\n"
}

// fill pulls one more lexically-complete line of tokens from next,
// appending to the buffer. newCommand selects the PS1-vs-PS2 prompt
// distinction via token.NextLine's contract. Returns false at EOF.
func (p *Parser) fill(newCommand bool) bool {
	for {
		line, ok := p.next(newCommand)
		if !ok {
			p.eof = true
			return false
		}
		status, err := p.lx.Feed(line)
		if err != nil {
			panic(&syntaxErr{msg: err.Error()})
		}
		if status == token.Done {
			p.toks = append(p.toks, p.lx.Tokens()...)
			p.heredocs = append(p.heredocs, p.lx.HeredocBodies()...)
			p.lx.Reset()
			return true
		}
		newCommand = false
	}
}

// ensure guarantees at least one more token is buffered beyond pos,
// pulling a continuation line (PS2) if the construct is still open. It
// panics with a syntax error at EOF, since every caller of ensure is
// inside a still-open grammatical construct.
func (p *Parser) ensure() {
	if p.pos < len(p.toks) {
		return
	}
	if !p.fill(false) {
		panic(&syntaxErr{msg: "unexpected end of input"})
	}
}

func (p *Parser) peek() token.Token {
	p.ensure()
	return p.toks[p.pos]
}

// peekAt looks ahead n tokens without requesting more input; callers
// that need guaranteed lookahead depth call ensure first.
func (p *Parser) peekAt(n int) (token.Token, bool) {
	if p.pos+n >= len(p.toks) {
		return token.Token{}, false
	}
	return p.toks[p.pos+n], true
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *Parser) atEOF() bool {
	return p.eof && p.pos >= len(p.toks)
}

// isOp reports whether the current token is an unconsumed Operator with
// the given text, without requesting more input past a known EOF.
func (p *Parser) isOp(text string) bool {
	if p.atEOF() {
		return false
	}
	t := p.peek()
	return t.Kind == token.Operator && t.Text == text
}

// isWord reports whether the current token is a Word with the given
// unquoted text (reserved-word / terminator check).
func (p *Parser) isWord(text string) bool {
	if p.atEOF() {
		return false
	}
	t := p.peek()
	return t.Kind == token.Word && !t.Quoted && t.Text == text
}

func (p *Parser) expectOp(text string) {
	p.skipNewlines()
	if !p.isOp(text) {
		panic(&syntaxErr{msg: fmt.Sprintf("expected %q", text)})
	}
	p.pos++
}

func (p *Parser) expectWord(text string) {
	p.skipNewlines()
	if !p.isWord(text) {
		panic(&syntaxErr{msg: fmt.Sprintf("expected %q", text)})
	}
	p.pos++
}

// skipNewlines consumes a run of "\n" operator tokens (the "linebreak"
// production).
func (p *Parser) skipNewlines() {
	for p.isOp("\n") {
		p.pos++
	}
}

// atTerminator reports whether the current position (after skipping
// newlines when inTerminators is non-nil, since linebreak precedes a
// terminator check inside compound_list) is a list terminator: EOF, or a
// word/operator present in terminators.
func (p *Parser) atTerminator(terminators map[string]bool) bool {
	if p.atEOF() {
		return true
	}
	if terminators == nil {
		return false
	}
	t := p.peek()
	if t.Kind == token.Word && !t.Quoted && terminators[t.Text] {
		return true
	}
	if t.Kind == token.Operator && terminators[t.Text] {
		return true
	}
	return false
}

// parseList implements spec §4.2's `list` / compound_list production.
// topLevel lists stop at the first bare, unseparated NEWLINE (one
// complete_command per top-level read); nested compound_lists continue
// through newlines, stopping only at one of terminators.
func (p *Parser) parseList(terminators map[string]bool, topLevel bool) *ast.List {
	list := &ast.List{}
	for {
		if !topLevel {
			p.skipNewlines()
		}
		if p.atTerminator(terminators) {
			break
		}
		pipeline := p.parsePipeline(terminators)
		list.Pipelines = append(list.Pipelines, pipeline)

		switch {
		case p.isOp("&"):
			panic(&syntaxErr{msg: "unsupported: asynchronous lists are not implemented"})

		case p.isOp(";") || p.isOp("&&") || p.isOp("||"):
			sep := ast.Semi
			if p.isOp("&&") {
				sep = ast.And
			} else if p.isOp("||") {
				sep = ast.Or
			}
			list.Separators = append(list.Separators, sep)
			p.pos++
			p.skipNewlines()
			if p.atTerminator(terminators) {
				return list
			}
			continue

		case p.isOp("\n"):
			list.Separators = append(list.Separators, ast.Semi)
			if topLevel {
				p.pos++
				return list
			}
			p.skipNewlines()
			if p.atTerminator(terminators) {
				return list
			}
			continue

		default:
			list.Separators = append(list.Separators, ast.Semi)
			return list
		}
	}
	return list
}

// parsePipeline implements `pipeline := ['!']+ command ('|' linebreak command)*`.
func (p *Parser) parsePipeline(terminators map[string]bool) *ast.Pipeline {
	pl := &ast.Pipeline{}
	for p.isWord("!") {
		pl.Negated = !pl.Negated
		p.pos++
	}
	pl.Commands = append(pl.Commands, p.parseCommand(terminators))
	for p.isOp("|") {
		p.pos++
		p.skipNewlines()
		pl.Commands = append(pl.Commands, p.parseCommand(terminators))
	}
	return pl
}

// parseCommand implements `command := simple_command | compound_command`,
// plus function_definition detection.
func (p *Parser) parseCommand(terminators map[string]bool) *ast.Command {
	if p.isWord("{") {
		return p.parseBraceGroup()
	}
	if p.isOp("(") {
		return p.parseSubshell()
	}
	if p.isWord("for") {
		return p.parseFor()
	}
	if p.isWord("if") {
		return p.parseIf()
	}
	if p.isWord("while") {
		return p.parseWhileUntil(false)
	}
	if p.isWord("until") {
		return p.parseWhileUntil(true)
	}
	if p.isWord("case") {
		return p.parseCase()
	}
	if fn, ok := p.tryParseFunctionDef(); ok {
		return fn
	}
	return p.parseSimpleCommand()
}

// tryParseFunctionDef recognizes `fname ( ) compound_command` — a NAME
// token immediately followed by the operators "(" and ")" with nothing
// between them.
func (p *Parser) tryParseFunctionDef() (*ast.Command, bool) {
	if p.atEOF() {
		return nil, false
	}
	t := p.peek()
	if t.Kind != token.Word || t.Quoted || isReserved(t.Text) || !isNameLike(t.Text) {
		return nil, false
	}
	t1, ok1 := p.peekAt(1)
	t2, ok2 := p.peekAt(2)
	if !ok1 || !ok2 {
		return nil, false
	}
	if !(t1.Kind == token.Operator && t1.Text == "(") || !(t2.Kind == token.Operator && t2.Text == ")") {
		return nil, false
	}
	name := t.Text
	p.pos += 3
	p.skipNewlines()
	body := p.parseCommand(nil)
	return &ast.Command{Kind: ast.KindFunctionDef, FuncName: name, FuncBody: body}, true
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

var compoundListTerminators = map[string]bool{
	")": true, "}": true, ";;": true, "do": true, "done": true,
	"elif": true, "else": true, "esac": true, "fi": true, "then": true,
}

func (p *Parser) parseBraceGroup() *ast.Command {
	p.pos++ // "{"
	body := p.parseList(compoundListTerminators, false)
	p.expectWord("}")
	cmd := &ast.Command{Kind: ast.KindBraceGroup, Body: body}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

func (p *Parser) parseSubshell() *ast.Command {
	p.pos++ // "("
	body := p.parseList(map[string]bool{")": true}, false)
	p.expectOp(")")
	cmd := &ast.Command{Kind: ast.KindSubshell, Body: body}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

func (p *Parser) parseFor() *ast.Command {
	p.pos++ // "for"
	nameTok := p.peek()
	if nameTok.Kind != token.Word || nameTok.Quoted || !isNameLike(nameTok.Text) {
		panic(&syntaxErr{msg: "for: expected name"})
	}
	p.pos++
	p.skipNewlines()

	var words []ast.Word
	if p.isWord("in") {
		p.pos++
		for !p.isOp(";") && !p.isOp("\n") && !p.atTerminator(compoundListTerminators) {
			w := p.advance()
			words = append(words, ast.Word{Text: w.Text, Quoted: w.Quoted})
		}
		if p.isOp(";") || p.isOp("\n") {
			p.pos++
		}
		p.skipNewlines()
	} else {
		// `for name; do ...` / `for name do ...`: implicit `in "$@"`.
		if p.isOp(";") {
			p.pos++
		}
		p.skipNewlines()
	}

	p.expectWord("do")
	body := p.parseList(compoundListTerminators, false)
	p.expectWord("done")

	cmd := &ast.Command{Kind: ast.KindFor, ForName: nameTok.Text, ForWords: words, ForBody: body}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

func (p *Parser) parseIf() *ast.Command {
	p.pos++ // "if"
	var arms []ast.IfArm
	for {
		cond := p.parseList(map[string]bool{"then": true}, false)
		p.expectWord("then")
		body := p.parseList(compoundListTerminators, false)
		arms = append(arms, ast.IfArm{Cond: cond, Body: body})

		if p.isWord("elif") {
			p.pos++
			continue
		}
		break
	}
	if p.isWord("else") {
		p.pos++
		elseBody := p.parseList(compoundListTerminators, false)
		arms = append(arms, ast.IfArm{Cond: nil, Body: elseBody})
	}
	p.expectWord("fi")

	cmd := &ast.Command{Kind: ast.KindIf, IfArms: arms}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

func (p *Parser) parseWhileUntil(until bool) *ast.Command {
	p.pos++ // "while" or "until"
	cond := p.parseList(map[string]bool{"do": true}, false)
	p.expectWord("do")
	body := p.parseList(compoundListTerminators, false)
	p.expectWord("done")

	kind := ast.KindWhile
	if until {
		kind = ast.KindUntil
	}
	cmd := &ast.Command{Kind: kind, WhileCond: cond, WhileBody: body}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

func (p *Parser) parseCase() *ast.Command {
	p.pos++ // "case"
	wordTok := p.advance()
	word := ast.Word{Text: wordTok.Text, Quoted: wordTok.Quoted}
	p.skipNewlines()
	p.expectWord("in")
	p.skipNewlines()

	var items []ast.CaseItem
	for !p.isWord("esac") {
		if p.isOp("(") {
			p.pos++
		}
		var patterns []ast.Word
		for {
			pt := p.advance()
			patterns = append(patterns, ast.Word{Text: pt.Text, Quoted: pt.Quoted})
			if p.isOp("|") {
				p.pos++
				continue
			}
			break
		}
		p.expectOp(")")
		p.skipNewlines()

		var body *ast.List
		if !p.isOp(";;") && !p.isWord("esac") {
			body = p.parseList(map[string]bool{";;": true, "esac": true}, false)
		}

		fallthrough_ := false
		if p.isOp(";;") {
			p.pos++
		}
		p.skipNewlines()

		items = append(items, ast.CaseItem{Patterns: patterns, Body: body, Fallthrough: fallthrough_})
	}
	p.expectWord("esac")

	cmd := &ast.Command{Kind: ast.KindCase, CaseWord: word, CaseItems: items}
	cmd.Redirs = p.parseRedirsOnly()
	return cmd
}

// parseRedirsOnly consumes a trailing run of io_redirects after a
// compound command's body, spec §4.2's "each carries its own
// redirections" rule for non-simple commands.
func (p *Parser) parseRedirsOnly() []ast.Redirection {
	var redirs []ast.Redirection
	for {
		r, ok := p.tryParseIoRedirect()
		if !ok {
			break
		}
		redirs = append(redirs, r)
	}
	return redirs
}

// parseSimpleCommand implements `simple_command := (io_redirect |
// assignment_word | word)+`, with assignment-words recognized only in
// the prefix before the first plain word.
func (p *Parser) parseSimpleCommand() *ast.Command {
	sc := &ast.SimpleCommand{}
	sawWord := false

	for {
		if p.atEOF() {
			break
		}
		if r, ok := p.tryParseIoRedirect(); ok {
			sc.Redirs = append(sc.Redirs, r)
			continue
		}
		t := p.peek()
		if t.Kind != token.Word {
			break
		}
		if !sawWord {
			if name, val, ok := splitAssignment(t); ok {
				sc.Assignments = append(sc.Assignments, ast.Assignment{Name: name, Value: val})
				p.pos++
				continue
			}
		}
		sc.Words = append(sc.Words, ast.Word{Text: t.Text, Quoted: t.Quoted})
		sawWord = true
		p.pos++
	}

	if len(sc.Assignments) == 0 && len(sc.Words) == 0 && len(sc.Redirs) == 0 {
		panic(&syntaxErr{msg: "expected a command"})
	}
	return &ast.Command{Kind: ast.KindSimple, Simple: sc}
}

// splitAssignment reports whether tok is a NAME=value assignment-word:
// its raw text up to the first unquoted "=" must be a valid NAME.
func splitAssignment(tok token.Token) (name string, value ast.Word, ok bool) {
	if tok.Quoted {
		return "", ast.Word{}, false
	}
	idx := strings.IndexByte(tok.Text, '=')
	if idx <= 0 {
		return "", ast.Word{}, false
	}
	name = tok.Text[:idx]
	if !isNameLike(name) {
		return "", ast.Word{}, false
	}
	return name, ast.Word{Text: tok.Text[idx+1:]}, true
}

// tryParseIoRedirect implements `io_redirect := [IO_NUMBER] op word`.
// This is the grammar's one backtracking point: an IO_NUMBER token not
// actually followed by a redirection operator is reinterpreted as a
// plain word rather than consumed here.
func (p *Parser) tryParseIoRedirect() (ast.Redirection, bool) {
	if p.atEOF() {
		return ast.Redirection{}, false
	}
	t := p.peek()

	fd := -1
	opIdx := 0
	if t.Kind == token.IONumber {
		next, ok := p.peekAt(1)
		if !ok || next.Kind != token.Operator || !token.IsRedirectOperator(next.Text) {
			return ast.Redirection{}, false // backtrack: not a redirect after all
		}
		fd = atoiSimple(t.Text)
		opIdx = 1
	} else if t.Kind != token.Operator || !token.IsRedirectOperator(t.Text) {
		return ast.Redirection{}, false
	}

	opTok, _ := p.peekAt(opIdx)
	kind, defaultFd := redirKind(opTok.Text)
	if fd < 0 {
		fd = defaultFd
	}
	p.pos += opIdx + 1

	wordTok := p.advance()
	operand := wordTok.Text

	if kind == ast.HereDoc {
		if wordTok.Quoted {
			kind = ast.HereDocQuoted
		}
		if len(p.heredocs) == 0 {
			panic(&syntaxErr{msg: "here-document body not collected"})
		}
		operand = p.heredocs[0]
		p.heredocs = p.heredocs[1:]
	}

	return ast.Redirection{Fd: fd, Kind: kind, Operand: operand}, true
}

func redirKind(op string) (ast.RedirKind, int) {
	switch op {
	case "<":
		return ast.InputRead, 0
	case ">":
		return ast.OutputTrunc, 1
	case ">|":
		return ast.OutputClobber, 1
	case ">>":
		return ast.Append, 1
	case "<&":
		return ast.DupFd, 0
	case ">&":
		return ast.DupFd, 1
	case "<>":
		return ast.ReadWrite, 0
	case "<<", "<<-":
		return ast.HereDoc, 0
	}
	return ast.InputRead, 0
}

func atoiSimple(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
