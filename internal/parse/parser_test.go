package parse_test

import (
	"testing"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/parse"
	"github.com/possh/possh/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linesFeeder returns a token.NextLine that serves lines one at a time,
// mirroring how a readline-backed or file-backed front-end would.
func linesFeeder(lines []string) token.NextLine {
	i := 0
	return func(newCommand bool) (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		l := lines[i]
		i++
		return l, true
	}
}

func parseOne(t *testing.T, lines ...string) *ast.CompleteCommand {
	t.Helper()
	p := parse.New(linesFeeder(lines))
	tree, result, msg := p.Parse()
	require.Equal(t, parse.Match, result, "msg=%s", msg)
	require.NotNil(t, tree)
	return tree
}

func TestParse_SimpleCommand(t *testing.T) {
	tree := parseOne(t, "echo hello world")
	require.Len(t, tree.Body.Pipelines, 1)
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Equal(t, ast.KindSimple, cmd.Kind)
	assert.Equal(t, []ast.Word{{Text: "echo"}, {Text: "hello"}, {Text: "world"}}, cmd.Simple.Words)
}

func TestParse_EmptyLineIsNoCommand(t *testing.T) {
	p := parse.New(linesFeeder([]string{""}))
	_, result, _ := p.Parse()
	assert.Equal(t, parse.NoCommand, result)
}

func TestParse_AssignmentPrefix(t *testing.T) {
	tree := parseOne(t, "FOO=bar echo hi")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Assignments, 1)
	assert.Equal(t, "FOO", cmd.Simple.Assignments[0].Name)
	assert.Equal(t, "bar", cmd.Simple.Assignments[0].Value.Text)
	require.Len(t, cmd.Simple.Words, 2)
}

func TestParse_AssignmentOnlyNoWords(t *testing.T) {
	tree := parseOne(t, "FOO=bar")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Assignments, 1)
	assert.Empty(t, cmd.Simple.Words)
}

func TestParse_Pipeline(t *testing.T) {
	tree := parseOne(t, "a | b | c")
	pl := tree.Body.Pipelines[0]
	require.Len(t, pl.Commands, 3)
}

func TestParse_Negation(t *testing.T) {
	tree := parseOne(t, "! false")
	pl := tree.Body.Pipelines[0]
	assert.True(t, pl.Negated)
}

func TestParse_ListSeparators(t *testing.T) {
	tree := parseOne(t, "a && b || c; d")
	require.Len(t, tree.Body.Pipelines, 4)
	assert.Equal(t, []ast.Sep{ast.And, ast.Or, ast.Semi, ast.Semi}, tree.Body.Separators)
}

func TestParse_Redirections(t *testing.T) {
	tree := parseOne(t, "cmd > out.txt 2>&1 < in.txt")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Redirs, 3)
	assert.Equal(t, ast.OutputTrunc, cmd.Simple.Redirs[0].Kind)
	assert.Equal(t, 1, cmd.Simple.Redirs[0].Fd)
	assert.Equal(t, ast.DupFd, cmd.Simple.Redirs[1].Kind)
	assert.Equal(t, 2, cmd.Simple.Redirs[1].Fd)
	assert.Equal(t, ast.InputRead, cmd.Simple.Redirs[2].Kind)
}

func TestParse_ForLoop(t *testing.T) {
	tree := parseOne(t, "for i in a b c; do echo $i; done")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Equal(t, ast.KindFor, cmd.Kind)
	assert.Equal(t, "i", cmd.ForName)
	require.Len(t, cmd.ForWords, 3)
	require.NotNil(t, cmd.ForBody)
}

func TestParse_ForLoopMultiline(t *testing.T) {
	tree := parseOne(t, "for i in a b c", "do", "echo $i", "done")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Equal(t, ast.KindFor, cmd.Kind)
	require.Len(t, cmd.ForBody.Pipelines, 1)
}

func TestParse_IfElse(t *testing.T) {
	tree := parseOne(t, `x=1; if [ "$x" = 1 ]; then echo yes; else echo no; fi`)
	cmd := tree.Body.Pipelines[1].Commands[0]
	require.Equal(t, ast.KindIf, cmd.Kind)
	require.Len(t, cmd.IfArms, 2)
	assert.Nil(t, cmd.IfArms[1].Cond)
}

func TestParse_IfElif(t *testing.T) {
	tree := parseOne(t, "if a; then b; elif c; then d; else e; fi")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.IfArms, 3)
	assert.NotNil(t, cmd.IfArms[0].Cond)
	assert.NotNil(t, cmd.IfArms[1].Cond)
	assert.Nil(t, cmd.IfArms[2].Cond)
}

func TestParse_WhileUntil(t *testing.T) {
	tree := parseOne(t, "while true; do echo x; done")
	cmd := tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.KindWhile, cmd.Kind)

	tree = parseOne(t, "until false; do echo x; done")
	cmd = tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.KindUntil, cmd.Kind)
}

func TestParse_BraceGroupAndSubshell(t *testing.T) {
	tree := parseOne(t, "{ echo a; echo b; }")
	cmd := tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.KindBraceGroup, cmd.Kind)
	require.Len(t, cmd.Body.Pipelines, 2)

	tree = parseOne(t, "(echo a; echo b)")
	cmd = tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.KindSubshell, cmd.Kind)
}

func TestParse_PipelineOfGroups(t *testing.T) {
	tree := parseOne(t, "{ echo a; echo b; } | { read x; echo got=$x; }")
	pl := tree.Body.Pipelines[0]
	require.Len(t, pl.Commands, 2)
	assert.Equal(t, ast.KindBraceGroup, pl.Commands[0].Kind)
	assert.Equal(t, ast.KindBraceGroup, pl.Commands[1].Kind)
}

func TestParse_Case(t *testing.T) {
	tree := parseOne(t, "case $x in", "a) echo A ;;", "b|c) echo BC ;;", "*) echo other ;;", "esac")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Equal(t, ast.KindCase, cmd.Kind)
	require.Len(t, cmd.CaseItems, 3)
	assert.Len(t, cmd.CaseItems[1].Patterns, 2)
}

func TestParse_FunctionDefinition(t *testing.T) {
	tree := parseOne(t, "f() { return 3; }")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Equal(t, ast.KindFunctionDef, cmd.Kind)
	assert.Equal(t, "f", cmd.FuncName)
	require.NotNil(t, cmd.FuncBody)
	assert.Equal(t, ast.KindBraceGroup, cmd.FuncBody.Kind)
}

func TestParse_Heredoc(t *testing.T) {
	tree := parseOne(t, "cat <<EOF", "Hi $USER", "EOF")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Redirs, 1)
	assert.Equal(t, ast.HereDoc, cmd.Simple.Redirs[0].Kind)
	assert.Equal(t, "Hi $USER\n", cmd.Simple.Redirs[0].Operand)
}

func TestParse_HeredocQuotedDelimiter(t *testing.T) {
	tree := parseOne(t, "cat <<'EOF'", "Hi $USER", "EOF")
	cmd := tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.HereDocQuoted, cmd.Simple.Redirs[0].Kind)
}

func TestParse_IoNumberBacktrack(t *testing.T) {
	tree := parseOne(t, "echo 123")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Words, 2)
	assert.Equal(t, "123", cmd.Simple.Words[1].Text)
}

func TestParse_ShiftAndSetBuiltinsAsPlainCommands(t *testing.T) {
	tree := parseOne(t, "set -- one two three")
	cmd := tree.Body.Pipelines[0].Commands[0]
	require.Len(t, cmd.Simple.Words, 5)
}

func TestParse_SyntaxErrorUnterminatedIf(t *testing.T) {
	p := parse.New(linesFeeder([]string{"if true; then echo hi"}))
	_, result, msg := p.Parse()
	assert.Equal(t, parse.Syntax, result)
	assert.NotEmpty(t, msg)
}

func TestParse_NestedSubshells(t *testing.T) {
	tree := parseOne(t, "(((echo deep)))")
	cmd := tree.Body.Pipelines[0].Commands[0]
	assert.Equal(t, ast.KindSubshell, cmd.Kind)
}
