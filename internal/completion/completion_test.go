package completion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdsh-project/xdsh/internal/vars"
)

func TestCompleteVarFiltersByPrefix(t *testing.T) {
	v := vars.NewVariables()
	require.NoError(t, v.Put("HOME", "/home/x", true))
	require.NoError(t, v.Put("HOSTNAME", "box", true))
	require.NoError(t, v.Put("PATH", "/bin", true))

	got := CompleteVar("HO", v)
	assert.Equal(t, []string{"$HOME", "$HOSTNAME"}, got)
}

func TestCompleteVarBraceWrapsInBraces(t *testing.T) {
	v := vars.NewVariables()
	require.NoError(t, v.Put("USER", "alice", true))

	got := CompleteVarBrace("USE", v)
	assert.Equal(t, []string{"${USER}"}, got)
}

func TestCompleteVarNoMatches(t *testing.T) {
	v := vars.NewVariables()
	require.NoError(t, v.Put("FOO", "bar", true))
	assert.Empty(t, CompleteVar("ZZZ", v))
}

func TestCompleteTildeUserFindsRoot(t *testing.T) {
	got := CompleteTildeUser("roo")
	assert.Contains(t, got, "~root")
}

func TestCompleteTildePathListsDirEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "downloads"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	home := func(name string) (string, bool) {
		if name == "" {
			return dir, true
		}
		return "", false
	}

	got := CompleteTildePath("", "do", home)
	assert.Equal(t, []string{"~/docs/", "~/downloads/"}, got)
}

func TestCompleteTildePathUnknownAccount(t *testing.T) {
	home := func(name string) (string, bool) { return "", false }
	assert.Empty(t, CompleteTildePath("nosuchuser", "", home))
}
