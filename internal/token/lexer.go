package token

import "strings"

// ctxKind is a lexical nesting context. The Lexer keeps a stack of these so
// scanning can pause at the end of a fed line (mid quote, mid group) and
// resume exactly where it left off once Feed supplies more text — quotes
// and $()/``/${} groups can each span several input lines.
type ctxKind int

const (
	ctxSingle ctxKind = iota
	ctxDouble
	ctxDollarParen
	ctxBacktick
	ctxDollarBrace
)

type ctxFrame struct {
	kind  ctxKind
	depth int // nested bare ( or { inside a $(...) / ${...} group
}

type heredocReq struct {
	delim string
	strip bool
	quoted bool
}

// Lexer is a resumable scanner over a growing source buffer. Callers feed
// it one line at a time; Feed reports whether that line left the buffer
// lexically balanced (Done) or still open inside a quote, an expansion
// group, a backslash-newline, or a pending here-document (NeedInput).
type Lexer struct {
	buf string
	pos int

	tokens []Token

	cur       strings.Builder
	curQuoted bool

	stack []ctxFrame

	awaitingHeredocDelim bool
	awaitingHeredocStrip bool
	pendingHeredocs      []heredocReq

	collecting []heredocReq
	bodies     []strings.Builder
	done       []string
}

// NewLexer returns a Lexer ready to accept its first Feed.
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokens returns the tokens accumulated since the last Reset.
func (lx *Lexer) Tokens() []Token { return lx.tokens }

// HeredocBodies returns collected here-document bodies in the order their
// "<<"/"<<-" operators were encountered.
func (lx *Lexer) HeredocBodies() []string { return lx.done }

// Reset clears all accumulated state so the Lexer can start a new
// complete_command from scratch.
func (lx *Lexer) Reset() {
	*lx = Lexer{}
}

func (lx *Lexer) pending() bool {
	return len(lx.stack) > 0 || lx.cur.Len() > 0 || len(lx.collecting) > 0 || len(lx.pendingHeredocs) > 0
}

// Feed appends one more line of input (without its trailing newline) and
// resumes scanning.
func (lx *Lexer) Feed(line string) (Status, error) {
	lx.buf += line + "\n"
	return lx.run()
}

func (lx *Lexer) run() (Status, error) {
	for {
		if len(lx.collecting) > 0 {
			more := lx.consumeHeredocLine()
			if more {
				return NeedInput, nil
			}
			continue
		}
		status, err := lx.scan()
		if err != nil {
			return Error, err
		}
		if status == NeedInput {
			return NeedInput, nil
		}
		// status == Done: this fed line ended in a balanced top-level
		// newline. If here-documents are still owed, switch to body
		// collection before declaring the whole Feed call Done.
		if len(lx.pendingHeredocs) > 0 {
			lx.collecting = lx.pendingHeredocs
			lx.pendingHeredocs = nil
			continue
		}
		return Done, nil
	}
}

// consumeHeredocLine pulls one raw line (up to the next '\n') from the
// buffer for the here-document currently being collected. It returns true
// if more input is needed (buffer exhausted before a newline was found).
func (lx *Lexer) consumeHeredocLine() bool {
	nl := strings.IndexByte(lx.buf[lx.pos:], '\n')
	if nl < 0 {
		return true
	}
	line := lx.buf[lx.pos : lx.pos+nl]
	lx.pos += nl + 1

	req := lx.collecting[0]
	compare := line
	stripped := line
	if req.strip {
		stripped = strings.TrimLeft(line, "\t")
		compare = stripped
	}
	if compare == req.delim {
		lx.done = append(lx.done, lx.bodies[0].String())
		lx.bodies = lx.bodies[1:]
		lx.collecting = lx.collecting[1:]
		return false
	}
	lx.bodies[0].WriteString(stripped)
	lx.bodies[0].WriteByte('\n')
	return false
}

// scan resumes the character-at-a-time lexical scan from lx.pos and runs
// until either the buffer is exhausted while something remains unbalanced
// (NeedInput) or a top-level, unquoted, unescaped newline is reached with
// an empty context stack (Done).
func (lx *Lexer) scan() (Status, error) {
	for lx.pos < len(lx.buf) {
		if len(lx.stack) > 0 {
			if done, status := lx.scanNested(); !done {
				return status, nil
			}
			continue
		}

		ch := lx.buf[lx.pos]

		switch {
		case ch == '\n':
			lx.flushWord()
			lx.tokens = append(lx.tokens, Token{Kind: Operator, Text: "\n"})
			lx.pos++
			return Done, nil

		case ch == ' ' || ch == '\t':
			lx.flushWord()
			lx.pos++

		case ch == '\'':
			lx.stack = append(lx.stack, ctxFrame{kind: ctxSingle})
			lx.cur.WriteByte(ch)
			lx.curQuoted = true
			lx.pos++

		case ch == '"':
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDouble})
			lx.cur.WriteByte(ch)
			lx.curQuoted = true
			lx.pos++

		case ch == '\\':
			if lx.pos+1 >= len(lx.buf) {
				return NeedInput, nil
			}
			if lx.buf[lx.pos+1] == '\n' {
				lx.pos += 2 // line continuation: vanishes entirely
				continue
			}
			lx.cur.WriteByte(ch)
			lx.cur.WriteByte(lx.buf[lx.pos+1])
			lx.curQuoted = true
			lx.pos += 2

		case ch == '$' && lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '(':
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarParen})
			lx.cur.WriteString("$(")
			lx.pos += 2

		case ch == '$' && lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '{':
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarBrace})
			lx.cur.WriteString("${")
			lx.pos += 2

		case ch == '`':
			lx.stack = append(lx.stack, ctxFrame{kind: ctxBacktick})
			lx.cur.WriteByte(ch)
			lx.pos++

		default:
			if op, ok := lx.matchOperator(); ok {
				lx.emitOperator(op)
				continue
			}
			lx.cur.WriteByte(ch)
			lx.pos++
		}
	}
	return NeedInput, nil
}

// scanNested advances one step while inside a quote or expansion group.
// The bool return is false when the buffer ran out mid-group (caller
// should report NeedInput); true means keep looping in scan().
func (lx *Lexer) scanNested() (bool, Status) {
	if lx.pos >= len(lx.buf) {
		return false, NeedInput
	}
	top := &lx.stack[len(lx.stack)-1]
	ch := lx.buf[lx.pos]

	switch top.kind {
	case ctxSingle:
		lx.cur.WriteByte(ch)
		lx.pos++
		if ch == '\'' {
			lx.stack = lx.stack[:len(lx.stack)-1]
		}
		return true, Done

	case ctxDouble:
		if ch == '\\' && lx.pos+1 < len(lx.buf) {
			lx.cur.WriteByte(ch)
			lx.cur.WriteByte(lx.buf[lx.pos+1])
			lx.pos += 2
			return true, Done
		}
		if ch == '$' && lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '(' {
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarParen})
			lx.cur.WriteString("$(")
			lx.pos += 2
			return true, Done
		}
		if ch == '$' && lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '{' {
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarBrace})
			lx.cur.WriteString("${")
			lx.pos += 2
			return true, Done
		}
		if ch == '`' {
			lx.stack = append(lx.stack, ctxFrame{kind: ctxBacktick})
			lx.cur.WriteByte(ch)
			lx.pos++
			return true, Done
		}
		lx.cur.WriteByte(ch)
		lx.pos++
		if ch == '"' {
			lx.stack = lx.stack[:len(lx.stack)-1]
		}
		return true, Done

	case ctxDollarParen:
		return lx.scanGroupChar(top, '(', ')')

	case ctxDollarBrace:
		return lx.scanGroupChar(top, '{', '}')

	case ctxBacktick:
		if ch == '\\' && lx.pos+1 < len(lx.buf) {
			lx.cur.WriteByte(ch)
			lx.cur.WriteByte(lx.buf[lx.pos+1])
			lx.pos += 2
			return true, Done
		}
		lx.cur.WriteByte(ch)
		lx.pos++
		if ch == '`' {
			lx.stack = lx.stack[:len(lx.stack)-1]
		}
		return true, Done
	}
	return true, Done
}

// scanGroupChar handles one character inside a $(...) or ${...} group,
// recursing into nested quotes/groups and tracking balanced open/close of
// the group's own delimiter so an inner subshell "(" doesn't end it early.
func (lx *Lexer) scanGroupChar(top *ctxFrame, open, close byte) (bool, Status) {
	ch := lx.buf[lx.pos]

	switch ch {
	case '\'':
		lx.stack = append(lx.stack, ctxFrame{kind: ctxSingle})
		lx.cur.WriteByte(ch)
		lx.pos++
	case '"':
		lx.stack = append(lx.stack, ctxFrame{kind: ctxDouble})
		lx.cur.WriteByte(ch)
		lx.pos++
	case '`':
		lx.stack = append(lx.stack, ctxFrame{kind: ctxBacktick})
		lx.cur.WriteByte(ch)
		lx.pos++
	case '\\':
		if lx.pos+1 < len(lx.buf) {
			lx.cur.WriteByte(ch)
			lx.cur.WriteByte(lx.buf[lx.pos+1])
			lx.pos += 2
		} else {
			return false, NeedInput
		}
	case '$':
		if lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '(' {
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarParen})
			lx.cur.WriteString("$(")
			lx.pos += 2
		} else if lx.pos+1 < len(lx.buf) && lx.buf[lx.pos+1] == '{' {
			lx.stack = append(lx.stack, ctxFrame{kind: ctxDollarBrace})
			lx.cur.WriteString("${")
			lx.pos += 2
		} else {
			lx.cur.WriteByte(ch)
			lx.pos++
		}
	case open:
		top.depth++
		lx.cur.WriteByte(ch)
		lx.pos++
	case close:
		lx.cur.WriteByte(ch)
		lx.pos++
		if top.depth == 0 {
			lx.stack = lx.stack[:len(lx.stack)-1]
		} else {
			top.depth--
		}
	default:
		lx.cur.WriteByte(ch)
		lx.pos++
	}
	return true, Done
}

// matchOperator finds the longest operator in Operators that matches the
// buffer starting at lx.pos (the maximal-munch rule spec §4.1 requires).
func (lx *Lexer) matchOperator() (string, bool) {
	rest := lx.buf[lx.pos:]
	for _, op := range Operators {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	return "", false
}

func (lx *Lexer) emitOperator(op string) {
	lx.flushWordForOperator(op)
	lx.tokens = append(lx.tokens, Token{Kind: Operator, Text: op})
	lx.pos += len(op)

	if op == "<<" || op == "<<-" {
		lx.awaitingHeredocDelim = true
		lx.awaitingHeredocStrip = op == "<<-"
	}
}

// flushWordForOperator flushes the current word, reclassifying it as
// IO_NUMBER when it is all digits and immediately precedes a redirection
// operator (spec §4.1's IO_NUMBER rule).
func (lx *Lexer) flushWordForOperator(op string) {
	if lx.cur.Len() == 0 {
		return
	}
	text := lx.cur.String()
	if IsRedirectOperator(op) && !lx.curQuoted && isAllDigits(text) {
		lx.tokens = append(lx.tokens, Token{Kind: IONumber, Text: text})
		lx.cur.Reset()
		lx.curQuoted = false
		return
	}
	lx.flushWord()
}

func (lx *Lexer) flushWord() {
	if lx.cur.Len() == 0 {
		return
	}
	text := lx.cur.String()
	tok := Token{Kind: Word, Text: text, Quoted: lx.curQuoted}
	lx.tokens = append(lx.tokens, tok)
	lx.cur.Reset()
	lx.curQuoted = false

	if lx.awaitingHeredocDelim {
		lx.awaitingHeredocDelim = false
		delim := literalText(text)
		lx.pendingHeredocs = append(lx.pendingHeredocs, heredocReq{
			delim:  delim,
			strip:  lx.awaitingHeredocStrip,
			quoted: tok.Quoted,
		})
		lx.bodies = append(lx.bodies, strings.Builder{})
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// literalText reduces a raw token's source text to its quote-removed form,
// used only to compute a here-document delimiter's comparison text (the
// full quote-removal + expansion pass for ordinary words happens later in
// internal/expand).
func literalText(raw string) string {
	var b strings.Builder
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '\'':
			j := strings.IndexByte(raw[i+1:], '\'')
			if j < 0 {
				b.WriteString(raw[i+1:])
				return b.String()
			}
			b.WriteString(raw[i+1 : i+1+j])
			i += j + 2
		case '"':
			i++
			for i < len(raw) && raw[i] != '"' {
				if raw[i] == '\\' && i+1 < len(raw) && strings.ContainsRune(`"\$`+"`", rune(raw[i+1])) {
					b.WriteByte(raw[i+1])
					i += 2
					continue
				}
				b.WriteByte(raw[i])
				i++
			}
			i++
		case '\\':
			if i+1 < len(raw) {
				b.WriteByte(raw[i+1])
				i += 2
			} else {
				i++
			}
		default:
			b.WriteByte(raw[i])
			i++
		}
	}
	return b.String()
}
