package shell

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdsh-project/xdsh/internal/config"
)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	home := t.TempDir()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.ShellConfig{
		Name:      "xdsh",
		Version:   "test",
		ConfigDir: home,
		HomeDir:   home,
		Options: &config.RCOptions{
			HistorySize:  100,
			FallbackPath: "/bin:/usr/bin",
		},
	}

	s, err := New(cfg, log.WithField("test", true), false, "/bin/xdsh")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestExecuteLineSetsLastExitCode(t *testing.T) {
	s := newTestShell(t)
	s.ExecuteLine("/bin/true")
	assert.Equal(t, 0, s.LastExitCode)

	s.ExecuteLine("/bin/false")
	assert.Equal(t, 1, s.LastExitCode)
}

func TestExecuteLineBlankIsNoop(t *testing.T) {
	s := newTestShell(t)
	s.LastExitCode = 5
	s.ExecuteLine("   ")
	assert.Equal(t, 5, s.LastExitCode)
}

func TestExecuteLineParameterExpansion(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, s.Vars.Put("GREETING", "hello", false))
	s.ExecuteLine(`/usr/bin/test "$GREETING" = hello`)
	assert.Equal(t, 0, s.LastExitCode)
}

func TestExpandAliasSubstitutesLeadingWord(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, s.Aliases.Put("ll", "ls -l"))
	assert.Equal(t, "ls -l /tmp", s.expandAlias("ll /tmp"))
}

func TestExpandAliasLeavesUnknownWordAlone(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, "echo hi", s.expandAlias("echo hi"))
}

func TestExpandAliasSelfReferentialExpandsOnce(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, s.Aliases.Put("ls", "ls -l"))
	assert.Equal(t, "ls -l /tmp", s.expandAlias("ls /tmp"))
}

func TestExpandAliasChainStopsAtAlreadyExpandedName(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, s.Aliases.Put("ll", "ls -l"))
	require.NoError(t, s.Aliases.Put("ls", "ls --color"))
	assert.Equal(t, "ls --color -l -a", s.expandAlias("ll -a"))
}

func TestSourceFileMissingIsSilent(t *testing.T) {
	s := newTestShell(t)
	s.SourceFile("/nonexistent/path/for/xdsh/test")
	assert.Equal(t, 0, s.LastExitCode)
}

func TestRunFileExecutesEachLine(t *testing.T) {
	s := newTestShell(t)
	path := s.Config.HomeDir + "/script.sh"
	require.NoError(t, os.WriteFile(path, []byte("/bin/true\n/bin/false\n"), 0o644))

	code := s.RunFile(path)
	assert.Equal(t, 1, code)
}

func TestRunStringReturnsExitCode(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, 0, s.RunString("/bin/true"))
}

func TestRunCommandSubstitutionCapturesOutput(t *testing.T) {
	s := newTestShell(t)
	out, code, err := s.RunCommandSubstitution("/bin/echo hi")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi\n", out)
}
