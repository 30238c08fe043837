package builtin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_JoinsArgumentsAndExecutes(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "eval", "exit", "7")
	assert.Equal(t, 7, status)
}

func TestExit_DefaultsToLastStatus(t *testing.T) {
	it := newInterp(t, "/")
	it.SetLastStatus(42)

	status, uw := run(t, it, "exit")
	assert.Equal(t, 42, status)
	assert.Equal(t, 42, uw.Status)
}

func TestExit_InvalidArgumentBecomes255(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "exit", "notanumber")
	assert.Equal(t, 255, status)
}

func TestExport_BareNameMarksExistingVariableExported(t *testing.T) {
	it := newInterp(t, "/")
	require.NoError(t, it.Env.Set("FOO", "bar", false))

	status, _ := run(t, it, "export", "FOO")
	require.Equal(t, 0, status)

	assert.Contains(t, it.Env.Exported(), "FOO=bar")
}

func TestExport_AssignsAndExports(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "export", "FOO=baz")
	require.Equal(t, 0, status)

	v, ok := it.Env.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "baz", v)
	assert.Contains(t, it.Env.Exported(), "FOO=baz")
}

func TestShift_DropsLeadingPositionalParameters(t *testing.T) {
	it := newInterp(t, "/")
	it.Env.SetPositional([]string{"a", "b", "c"})

	status, _ := run(t, it, "shift", "2")
	require.Equal(t, 0, status)
	assert.Equal(t, []string{"c"}, it.Env.Positional())
}

func TestShift_BeyondAvailableFails(t *testing.T) {
	it := newInterp(t, "/")
	it.Env.SetPositional([]string{"a"})

	status, _ := run(t, it, "shift", "5")
	assert.Equal(t, 1, status)
}

func TestReturn_OutsideCallFrameFails(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "return", "3")
	assert.Equal(t, 1, status)
}

func TestDot_SourcesFileInCurrentShell(t *testing.T) {
	it := newInterp(t, "/")
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("FOO=bar\nexit 0\n"), 0644))

	status, _ := run(t, it, ".", path)
	require.Equal(t, 0, status)

	v, ok := it.Env.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestDot_MissingFileFails(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, ".", "/no/such/file/here")
	assert.Equal(t, 1, status)
}

func TestUmask_ReportsCurrentMask(t *testing.T) {
	it := newInterp(t, "/")
	getOutput := captureStdout(t, it)

	status, _ := run(t, it, "umask", "022")
	require.Equal(t, 0, status)
	assert.Equal(t, uint32(022), it.Env.Umask())

	status, _ = run(t, it, "umask")
	require.Equal(t, 0, status)
	assert.Equal(t, "0022\n", getOutput())
}
