package builtin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/possh/possh/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, it interface {
	ApplyRedirs([]ast.Redirection) error
}) func() string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdout")
	require.NoError(t, it.ApplyRedirs([]ast.Redirection{{Fd: 1, Kind: ast.OutputTrunc, Operand: path}}))
	return func() string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
}

func TestCommand_IdentifiesBuiltin(t *testing.T) {
	it := newInterp(t, "/")
	getOutput := captureStdout(t, it)

	status, _ := run(t, it, "command", "-v", "cd")
	require.Equal(t, 0, status)
	assert.Equal(t, "cd\n", getOutput())
}

func TestCommand_IdentifiesReservedWord(t *testing.T) {
	it := newInterp(t, "/")
	getOutput := captureStdout(t, it)

	status, _ := run(t, it, "command", "-V", "if")
	require.Equal(t, 0, status)
	assert.Contains(t, getOutput(), "reserved word")
}

func TestCommand_NotFoundVerbose(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "command", "-V", "definitely-not-a-real-command-xyz")
	assert.Equal(t, 1, status)
}
