package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("PATH"))
	assert.True(t, ValidName("_private1"))
	assert.False(t, ValidName("1name"))
	assert.False(t, ValidName("na-me"))
	assert.False(t, ValidName(""))
}

func TestVariablesGetPutRemove(t *testing.T) {
	v := NewVariables()
	assert.NoError(t, v.Put("FOO", "bar", false))

	value, ok := v.Get("FOO")
	assert.True(t, ok)
	assert.Equal(t, "bar", value)

	_, ok = v.Get("MISSING")
	assert.False(t, ok)

	v.Remove("FOO")
	_, ok = v.Get("FOO")
	assert.False(t, ok)
}

func TestVariablesPutRejectsInvalidName(t *testing.T) {
	v := NewVariables()
	assert.Error(t, v.Put("1bad", "x", false))
}

func TestVariablesCreateEnvpOnlyExported(t *testing.T) {
	v := NewVariables()
	assert.NoError(t, v.Put("EXPORTED", "1", true))
	assert.NoError(t, v.Put("LOCAL", "2", false))

	assert.Equal(t, []string{"EXPORTED=1"}, v.CreateEnvp())
}

func TestVariablesSetExportedIsNoOpWhenAbsent(t *testing.T) {
	v := NewVariables()
	v.SetExported("GHOST", true)
	assert.False(t, v.IsExported("GHOST"))
}

func TestVariablesNamesSorted(t *testing.T) {
	v := NewVariables()
	assert.NoError(t, v.Put("B", "1", false))
	assert.NoError(t, v.Put("A", "2", false))
	assert.Equal(t, []string{"A", "B"}, v.Names())
}

func TestAliasesGetPutRemoveAll(t *testing.T) {
	a := NewAliases()
	assert.NoError(t, a.Put("ll", "ls -l"))

	value, ok := a.Get("ll")
	assert.True(t, ok)
	assert.Equal(t, "ls -l", value)

	assert.NoError(t, a.Put("la", "ls -a"))
	a.RemoveAll()
	assert.Empty(t, a.Names())
}
