package expand_test

import (
	"fmt"
	"testing"

	"github.com/possh/possh/internal/expand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCtx struct {
	vars       map[string]string
	positional []string
	arg0       string
	status     int
	pid        int
	noglob     bool
	nounset    bool
	subst      func(string) (string, error)
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{vars: map[string]string{"IFS": " \t\n"}, arg0: "sh", pid: 4242}
}

func (f *fakeCtx) Lookup(name string) (string, bool) { v, ok := f.vars[name]; return v, ok }
func (f *fakeCtx) Positional() []string              { return f.positional }
func (f *fakeCtx) Arg0() string                      { return f.arg0 }
func (f *fakeCtx) LastStatus() int                   { return f.status }
func (f *fakeCtx) ShellPID() int                     { return f.pid }
func (f *fakeCtx) Noglob() bool                      { return f.noglob }
func (f *fakeCtx) Nounset() bool                     { return f.nounset }
func (f *fakeCtx) RunCommandSubst(src string) (string, error) {
	if f.subst != nil {
		return f.subst(src)
	}
	return "", fmt.Errorf("no command substitution configured")
}

func TestExpandWord_PlainText(t *testing.T) {
	ctx := newFakeCtx()
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExpandWord_Parameter(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "bar"
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "$FOO baz"})
	require.NoError(t, err)
	assert.Equal(t, "bar baz", out)
}

func TestExpandWord_BracedParameter(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "bar"
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "${FOO}baz"})
	require.NoError(t, err)
	assert.Equal(t, "barbaz", out)
}

func TestExpandWord_DefaultValue(t *testing.T) {
	ctx := newFakeCtx()
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "${UNSET:-fallback}"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestExpandWord_SingleQuoteLiteral(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "bar"
	out, err := expand.ExpandWord(ctx, expand.Word{Text: `'$FOO'`})
	require.NoError(t, err)
	assert.Equal(t, "$FOO", out)
}

func TestExpandWord_DoubleQuoteExpandsParam(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "bar"
	out, err := expand.ExpandWord(ctx, expand.Word{Text: `"a $FOO b"`})
	require.NoError(t, err)
	assert.Equal(t, "a bar b", out)
}

func TestExpandWord_CommandSubstitutionParen(t *testing.T) {
	ctx := newFakeCtx()
	ctx.subst = func(src string) (string, error) {
		assert.Equal(t, "echo hi", src)
		return "hi\n", nil
	}
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "$(echo hi)"})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestExpandWord_Tilde(t *testing.T) {
	ctx := newFakeCtx()
	t.Setenv("HOME", "/home/possh")
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "~/work"})
	require.NoError(t, err)
	assert.Equal(t, "/home/possh/work", out)
}

func TestExpand_FieldSplitting(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "a  b   c"
	fields, err := expand.Expand(ctx, expand.Word{Text: "$FOO"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fields)
}

func TestExpand_NoFieldSplitKeepsWhole(t *testing.T) {
	ctx := newFakeCtx()
	ctx.vars["FOO"] = "a b c"
	fields, err := expand.Expand(ctx, expand.Word{Text: "$FOO"}, expand.NoFieldSplit)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b c"}, fields)
}

func TestExpand_EmptyExpansionYieldsNoField(t *testing.T) {
	ctx := newFakeCtx()
	fields, err := expand.Expand(ctx, expand.Word{Text: "$UNSET"}, 0)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestMatches_ShellPattern(t *testing.T) {
	assert.True(t, expand.Matches("hello.txt", "*.txt"))
	assert.False(t, expand.Matches("hello.md", "*.txt"))
	assert.True(t, expand.Matches("a", "[ab]"))
}

func TestExpandWord_PositionalAndSpecialParams(t *testing.T) {
	ctx := newFakeCtx()
	ctx.positional = []string{"one", "two"}
	ctx.status = 3

	out, err := expand.ExpandWord(ctx, expand.Word{Text: "$1 $2 $# $?"})
	require.NoError(t, err)
	assert.Equal(t, "one two 2 3", out)
}

func TestExpandBraceParam_UnsetErrorForm(t *testing.T) {
	ctx := newFakeCtx()
	_, err := expand.ExpandWord(ctx, expand.Word{Text: "${UNSET:?must be set}"})
	assert.Error(t, err)
}

func TestExpandWord_NounsetErrorsOnUnsetParameter(t *testing.T) {
	ctx := newFakeCtx()
	ctx.nounset = true
	_, err := expand.ExpandWord(ctx, expand.Word{Text: "$UNSET"})
	assert.Error(t, err)
}

func TestExpandWord_NounsetAllowsDefaultForm(t *testing.T) {
	ctx := newFakeCtx()
	ctx.nounset = true
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "${UNSET:-fallback}"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestExpandWord_NounsetDoesNotAffectSetParameter(t *testing.T) {
	ctx := newFakeCtx()
	ctx.nounset = true
	ctx.vars["x"] = "1"
	out, err := expand.ExpandWord(ctx, expand.Word{Text: "$x"})
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}
