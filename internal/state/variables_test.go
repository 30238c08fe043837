package state_test

import (
	"testing"

	"github.com/possh/possh/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_SetGet(t *testing.T) {
	e := state.NewEnv("sh", nil)
	require.NoError(t, e.Set("FOO", "bar", false))
	v, ok := e.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestEnv_InvalidName(t *testing.T) {
	e := state.NewEnv("sh", nil)
	err := e.Set("1BAD", "x", false)
	assert.Error(t, err)
}

func TestEnv_ExportPropagatesOnceSet(t *testing.T) {
	e := state.NewEnv("sh", nil)
	require.NoError(t, e.Set("FOO", "1", true))
	assert.True(t, e.IsExported("FOO"))
	require.NoError(t, e.Set("FOO", "2", false))
	assert.True(t, e.IsExported("FOO"))
}

func TestEnv_OverlayPushPop(t *testing.T) {
	e := state.NewEnv("sh", nil)
	require.NoError(t, e.Set("FOO", "global", false))

	mark := e.Mark()
	e.PushOverlay("FOO", "temp")
	v, _ := e.Get("FOO")
	assert.Equal(t, "temp", v)

	e.PopOverlaysTo(mark)
	v, _ = e.Get("FOO")
	assert.Equal(t, "global", v)
}

func TestEnv_OverlayOnUnsetVariableRemovesAfterPop(t *testing.T) {
	e := state.NewEnv("sh", nil)
	mark := e.Mark()
	e.PushOverlay("NEWVAR", "v")
	_, ok := e.Get("NEWVAR")
	assert.True(t, ok)

	e.PopOverlaysTo(mark)
	_, ok = e.Get("NEWVAR")
	assert.False(t, ok)
}

func TestEnv_UnsetRemovesFromAllScopes(t *testing.T) {
	e := state.NewEnv("sh", nil)
	require.NoError(t, e.Set("FOO", "bar", false))
	e.Unset("FOO")
	_, ok := e.Get("FOO")
	assert.False(t, ok)
}

func TestEnv_PositionalShift(t *testing.T) {
	e := state.NewEnv("sh", []string{"one", "two", "three"})
	require.NoError(t, e.Shift(1))
	assert.Equal(t, []string{"two", "three"}, e.Positional())
}

func TestEnv_ShiftOutOfRange(t *testing.T) {
	e := state.NewEnv("sh", []string{"one"})
	err := e.Shift(5)
	assert.Error(t, err)
}

func TestEnv_ShiftZeroIsNoop(t *testing.T) {
	e := state.NewEnv("sh", []string{"one", "two"})
	require.NoError(t, e.Shift(0))
	assert.Equal(t, []string{"one", "two"}, e.Positional())
}

func TestEnv_PushPositionalFrameRestores(t *testing.T) {
	e := state.NewEnv("sh", []string{"a"})
	restore := e.PushPositionalFrame("myfunc", []string{"x", "y"})
	assert.Equal(t, "myfunc", e.Arg0())
	assert.Equal(t, []string{"x", "y"}, e.Positional())

	restore()
	assert.Equal(t, "sh", e.Arg0())
	assert.Equal(t, []string{"a"}, e.Positional())
}

func TestEnv_IFSDefault(t *testing.T) {
	e := state.NewEnv("sh", nil)
	e.Unset("IFS")
	assert.Equal(t, " \t\n", e.IFS())
}

func TestIsValidName(t *testing.T) {
	assert.True(t, state.IsValidName("FOO_bar9"))
	assert.False(t, state.IsValidName("9FOO"))
	assert.False(t, state.IsValidName("FOO-BAR"))
}
