package builtin_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/possh/possh/internal/builtin"
	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, it *interp.Interp, args ...string) (int, interp.Unwind) {
	t.Helper()
	fn, ok := interp.LookupBuiltin(args[0])
	require.True(t, ok, "builtin %q not registered", args[0])
	return fn.Fn(it, args)
}

func newInterp(t *testing.T, pwd string) *interp.Interp {
	t.Helper()
	env := state.NewEnv("possh", nil)
	env.SetPwd(pwd)
	require.NoError(t, env.Set("PWD", pwd, true))
	return interp.New(env)
}

func TestCd_LogicalDotDot(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "a", "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "c"), 0755))

	it := newInterp(t, filepath.Join(base, "a", "b"))
	require.NoError(t, it.Env.Set("HOME", base, true))

	status, uw := run(t, it, "cd", "../../c")
	assert.Equal(t, 0, status)
	assert.Equal(t, interp.None, uw)
	assert.Equal(t, filepath.Join(base, "c"), it.Env.Pwd())
}

func TestCd_NoArgGoesHome(t *testing.T) {
	base := t.TempDir()
	it := newInterp(t, base)
	require.NoError(t, it.Env.Set("HOME", base, true))

	status, _ := run(t, it, "cd")
	assert.Equal(t, 0, status)
	assert.Equal(t, base, it.Env.Pwd())
}

func TestCd_DotSegmentsFold(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "a", "b", "c"), 0755))

	it := newInterp(t, filepath.Join(base, "a", "b", "c"))
	require.NoError(t, it.Env.Set("HOME", base, true))

	status, _ := run(t, it, "cd", "./../.")
	assert.Equal(t, 0, status)
	assert.Equal(t, filepath.Join(base, "a", "b"), it.Env.Pwd())
}
