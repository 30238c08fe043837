package state_test

import (
	"testing"

	"github.com/possh/possh/internal/ast"
	"github.com/possh/possh/internal/state"
	"github.com/stretchr/testify/assert"
)

func TestFunctionTable_DefineLookupRemove(t *testing.T) {
	tbl := state.NewFunctionTable()
	body := &ast.Command{Kind: ast.KindSimple}
	tbl.Define("greet", body)

	f := tbl.Lookup("greet")
	assert.NotNil(t, f)
	assert.Same(t, body, f.Body)

	tbl.Remove("greet")
	assert.Nil(t, tbl.Lookup("greet"))
}

func TestFunctionTable_RetainSurvivesRemove(t *testing.T) {
	tbl := state.NewFunctionTable()
	tbl.Define("f", &ast.Command{Kind: ast.KindSimple})
	f := tbl.Lookup("f")
	f.Retain()

	tbl.Remove("f")
	assert.Nil(t, tbl.Lookup("f"))
	// the invocation's own handle is still valid
	assert.NotNil(t, f.Body)
	f.Release()
}

func TestTrapTable_SetClearAction(t *testing.T) {
	tt := state.NewTrapTable()
	tt.Set("INT", "echo caught")
	action, ok := tt.Action("INT")
	assert.True(t, ok)
	assert.Equal(t, "echo caught", action)

	tt.Clear("INT")
	_, ok = tt.Action("INT")
	assert.False(t, ok)
}

func TestTrapTable_PendingDeferredWhileRunning(t *testing.T) {
	tt := state.NewTrapTable()
	tt.Raise("INT")
	tt.SetRunning(true)
	assert.Nil(t, tt.TakePending())

	tt.SetRunning(false)
	pending := tt.TakePending()
	assert.Equal(t, []string{"INT"}, pending)
	assert.Nil(t, tt.TakePending())
}
