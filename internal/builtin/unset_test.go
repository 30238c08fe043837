package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnset_RemovesVariableByDefault(t *testing.T) {
	it := newInterp(t, "/")
	require.NoError(t, it.Env.Set("FOO", "bar", false))

	status, _ := run(t, it, "unset", "FOO")
	require.Equal(t, 0, status)

	_, ok := it.Env.Get("FOO")
	assert.False(t, ok)
}

func TestUnset_InvalidNameFails(t *testing.T) {
	it := newInterp(t, "/")
	status, _ := run(t, it, "unset", "1bad")
	assert.Equal(t, 1, status)
}
