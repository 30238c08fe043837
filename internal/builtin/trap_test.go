package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrap_InstallsAndClearsHandler(t *testing.T) {
	it := newInterp(t, "/")

	status, _ := run(t, it, "trap", "echo got it", "INT")
	require.Equal(t, 0, status)

	action, ok := it.Env.Traps.Action("INT")
	require.True(t, ok)
	assert.Equal(t, "echo got it", action)

	status, _ = run(t, it, "trap", "-", "INT")
	require.Equal(t, 0, status)
	_, ok = it.Env.Traps.Action("INT")
	assert.False(t, ok)
}

func TestTrap_RejectsUnknownCondition(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "trap", "echo hi", "NOSUCHSIGNAL")
	assert.Equal(t, 1, status)
}

func TestTrap_AcceptsSigPrefixedName(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "trap", "exit 1", "SIGTERM")
	require.Equal(t, 0, status)
	_, ok := it.Env.Traps.Action("TERM")
	assert.True(t, ok)
}
