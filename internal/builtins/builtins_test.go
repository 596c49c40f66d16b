package builtins

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/jobtable"
	"github.com/xdsh-project/xdsh/internal/tasks"
	"github.com/xdsh-project/xdsh/internal/terminal"
	"github.com/xdsh-project/xdsh/internal/vars"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	term, err := terminal.Open(false)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return New(jobtable.New(), term, vars.NewVariables(), vars.NewAliases(), tasks.NewTaskManager(), log.WithField("test", true))
}

func TestIsBuiltinKnowsExactlyTheSevenNames(t *testing.T) {
	d := newTestDispatcher(t)
	for _, name := range []string{"jobs", "fg", "bg", "kill", "alias", "unalias", "set"} {
		assert.True(t, d.IsBuiltin(name), name)
	}
	assert.False(t, d.IsBuiltin("echo"))
}

func TestJobsHelp(t *testing.T) {
	d := newTestDispatcher(t)
	var out bytes.Buffer
	code := d.Run("jobs", []string{"jobs", "--help"}, nil, &out, io.Discard)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "usage: jobs")
}

func TestJobsInvalidOptionIsUsageError(t *testing.T) {
	d := newTestDispatcher(t)
	var out, errOut bytes.Buffer
	code := d.Run("jobs", []string{"jobs", "-x"}, nil, &out, &errOut)
	assert.Equal(t, 2, code)
}

func TestJobsReportsCompletedJobBeforePruning(t *testing.T) {
	d := newTestDispatcher(t)

	cmd := command.New([]string{"sleep", "1"}, "sleep 1")
	cmd.Pid = 4242
	j := job.New([]*command.Command{cmd}, true)
	d.Table.Add(j)
	d.Table.ApplyObservedStatus(j, cmd, 0) // exited(0), not yet reported

	var out bytes.Buffer
	code := d.Run("jobs", []string{"jobs"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Done")
	assert.Contains(t, out.String(), "sleep 1")
	assert.Empty(t, d.Table.All(), "the finished job is pruned once reported")
}

func TestAliasRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	var out bytes.Buffer
	code := d.Run("alias", []string{"alias", "ll=ls -l"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)

	out.Reset()
	code = d.Run("alias", []string{"alias", "ll"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)
	assert.Equal(t, "alias ll='ls -l'\n", out.String())
}

func TestAliasUnknownNameFails(t *testing.T) {
	d := newTestDispatcher(t)
	var errOut bytes.Buffer
	code := d.Run("alias", []string{"alias", "nope"}, nil, io.Discard, &errOut)
	assert.Equal(t, 1, code)
}

func TestUnaliasAll(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.Aliases.Put("ll", "ls -l"))
	code := d.Run("unalias", []string{"unalias", "-a"}, nil, io.Discard, io.Discard)
	require.Equal(t, 0, code)
	assert.Empty(t, d.Aliases.Names())
}

func TestSetExportsExistingVariable(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.Vars.Put("FOO", "bar", false))

	code := d.Run("set", []string{"set", "FOO"}, nil, io.Discard, io.Discard)
	require.Equal(t, 0, code)
	assert.True(t, d.Vars.IsExported("FOO"))

	var out bytes.Buffer
	code = d.Run("set", []string{"set"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)
	assert.Equal(t, "set FOO='bar'\n", out.String())
}

func TestSetAssignsAndExportsInOneStep(t *testing.T) {
	d := newTestDispatcher(t)
	code := d.Run("set", []string{"set", "X=1"}, nil, io.Discard, io.Discard)
	require.Equal(t, 0, code)
	v, ok := d.Vars.Get("X")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.True(t, d.Vars.IsExported("X"))
}

func TestKillListAll(t *testing.T) {
	d := newTestDispatcher(t)
	var out bytes.Buffer
	code := d.Run("kill", []string{"kill", "-l"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "KILL\n")
}

func TestKillListTranslatesNumberToName(t *testing.T) {
	d := newTestDispatcher(t)
	var out bytes.Buffer
	code := d.Run("kill", []string{"kill", "-l", "9"}, nil, &out, io.Discard)
	require.Equal(t, 0, code)
	assert.Equal(t, "KILL\n", out.String())
}

func TestKillNoOperandsIsUsageError(t *testing.T) {
	d := newTestDispatcher(t)
	code := d.Run("kill", []string{"kill"}, nil, io.Discard, io.Discard)
	assert.Equal(t, 2, code)
}

func TestKillNonexistentJobspecFailsButContinues(t *testing.T) {
	d := newTestDispatcher(t)
	var errOut bytes.Buffer
	code := d.Run("kill", []string{"kill", "%5", "%6"}, nil, io.Discard, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "%5")
	assert.Contains(t, errOut.String(), "%6")
}

func TestFgWithoutJobControlFails(t *testing.T) {
	d := newTestDispatcher(t)
	var errOut bytes.Buffer
	code := d.Run("fg", []string{"fg"}, nil, io.Discard, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "no job control")
}

func TestBgWithoutJobControlFails(t *testing.T) {
	d := newTestDispatcher(t)
	var errOut bytes.Buffer
	code := d.Run("bg", []string{"bg"}, nil, io.Discard, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "no job control")
}

func TestResolveJobspecCurrentPreviousAndByIDFailOnEmptyTable(t *testing.T) {
	table := jobtable.New()
	_, err := ResolveJobspec(table, "%%")
	assert.Error(t, err)
	_, err = ResolveJobspec(table, "%-")
	assert.Error(t, err)
	_, err = ResolveJobspec(table, "%3")
	assert.Error(t, err)
	_, err = ResolveJobspec(table, "bogus")
	assert.Error(t, err)
}
