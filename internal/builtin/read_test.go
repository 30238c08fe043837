package builtin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/possh/possh/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redirectStdinFromString(t *testing.T, it interface {
	ApplyRedirs([]ast.Redirection) error
}, data string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	require.NoError(t, it.ApplyRedirs([]ast.Redirection{{Fd: 0, Kind: ast.InputRead, Operand: path}}))
}

func TestRead_SplitsFieldsOnIFS(t *testing.T) {
	it := newInterp(t, "/")
	redirectStdinFromString(t, it, "one two three\n")

	status, _ := run(t, it, "read", "a", "b", "c")
	require.Equal(t, 0, status)

	a, _ := it.Env.Get("a")
	b, _ := it.Env.Get("b")
	c, _ := it.Env.Get("c")
	assert.Equal(t, "one", a)
	assert.Equal(t, "two", b)
	assert.Equal(t, "three", c)
}

func TestRead_LastNameAbsorbsRemainder(t *testing.T) {
	it := newInterp(t, "/")
	redirectStdinFromString(t, it, "one two three four\n")

	status, _ := run(t, it, "read", "a", "rest")
	require.Equal(t, 0, status)

	a, _ := it.Env.Get("a")
	rest, _ := it.Env.Get("rest")
	assert.Equal(t, "one", a)
	assert.Equal(t, "two three four", rest)
}

func TestRead_EOFWithPartialDataReturnsOne(t *testing.T) {
	it := newInterp(t, "/")
	redirectStdinFromString(t, it, "incomplete")

	status, _ := run(t, it, "read", "a")
	assert.Equal(t, 1, status)
	a, _ := it.Env.Get("a")
	assert.Equal(t, "incomplete", a)
}

func TestRead_RawDisablesBackslashEscape(t *testing.T) {
	it := newInterp(t, "/")
	redirectStdinFromString(t, it, `a\ b`+"\n")

	status, _ := run(t, it, "read", "-r", "x")
	require.Equal(t, 0, status)
	x, _ := it.Env.Get("x")
	assert.Equal(t, `a\ b`, x)
}
