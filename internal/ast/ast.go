// Package ast defines the syntax tree the parser produces and the
// executor walks, per the data model of the core command language: a
// tagged-union Command over simple commands, compound constructs, and
// function definitions, wired together by Pipeline, List, and
// CompleteCommand.
package ast

// RedirKind enumerates the kinds of redirection a SimpleCommand or
// compound command can carry.
type RedirKind int

const (
	InputRead RedirKind = iota
	OutputTrunc
	OutputClobber
	Append
	DupFd
	ReadWrite
	HereDoc
	HereDocQuoted
)

// Redirection is one redirect operator applied to a command. Fd defaults
// to 0 for input-shaped operators and 1 for output-shaped ones. Operand
// holds the raw, unexpanded operand word text for every kind except
// HereDoc/HereDocQuoted, where it holds the already-collected body.
type Redirection struct {
	Fd      int
	Kind    RedirKind
	Operand string
}

// Word is a single word position in a simple command or redirection
// operand: raw source text plus whether any part of it came from inside
// a quote or backslash escape (needed by the expander, not the parser).
type Word struct {
	Text   string
	Quoted bool
}

// Assignment is one NAME=VALUE prefix item of a simple command.
type Assignment struct {
	Name  string
	Value Word
}

// SimpleCommand is an ordered command: assignments (only before the
// first plain word), argument words, and redirections, each carrying the
// relative order they appeared in the source (Redirections are applied
// strictly in that order; later ones win for a reused fd).
type SimpleCommand struct {
	Assignments []Assignment
	Words       []Word
	Redirs      []Redirection
}

// CommandKind tags which variant of Command is populated.
type CommandKind int

const (
	KindSimple CommandKind = iota
	KindBraceGroup
	KindSubshell
	KindFor
	KindIf
	KindWhile
	KindUntil
	KindCase
	KindFunctionDef
)

// IfArm is one condition/body pair of an If command; the final arm of
// an if/elif chain may have a nil Cond to represent a trailing else.
type IfArm struct {
	Cond *List
	Body *List
}

// CaseItem is one pattern clause of a Case command. Fallthrough, when
// true, makes execution continue into the next item instead of stopping;
// the parser never sets it, because the lexer has no fall-through
// terminator and every clause ends with ";;" or "esac".
type CaseItem struct {
	Patterns    []Word
	Body        *List
	Fallthrough bool
}

// Command is a tagged union over every command shape the grammar
// produces. Only the fields matching Kind are populated. Redirs holds
// the command's own redirections — for compound commands these wrap the
// whole construct, applied around its entire execution.
type Command struct {
	Kind   CommandKind
	Redirs []Redirection

	Simple *SimpleCommand

	Body *List // BraceGroup, Subshell

	ForName  string // For
	ForWords []Word
	ForBody  *List

	IfArms    []IfArm // If
	WhileCond *List   // While, Until
	WhileBody *List

	CaseWord  Word // Case
	CaseItems []CaseItem

	FuncName string // FunctionDef
	FuncBody *Command
}

// Sep is the separator linking one pipeline to the next inside a List.
type Sep int

const (
	Semi Sep = iota
	And
	Or
)

// Pipeline is a sequence of commands connected by pipes. A pipeline of
// one command runs inline; Negated applies "!" logical negation to the
// final exit status.
type Pipeline struct {
	Negated  bool
	Commands []*Command
}

// List is a sequence of pipelines joined by separators. Separators has
// exactly one entry per pipeline; Separators[i] governs whether
// Pipelines[i+1] is conditionally executed ("&&" skips it unless the
// previous status was 0, "||" skips it unless the previous status was
// nonzero). The final separator is always Semi.
type List struct {
	Pipelines  []*Pipeline
	Separators []Sep
}

// CompleteCommand is one top-level parse result: a List plus a link back
// to the CompleteCommand that was executing when this one was entered
// (set when a trap handler re-enters execution), restored on return.
type CompleteCommand struct {
	Body *List
	Prev *CompleteCommand
}
