package signals

import (
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/jobtable"
)

func TestReaperReapsRealChild(t *testing.T) {
	table := jobtable.New()
	core := Install(table, nil, false)
	defer core.Stop()

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	c1 := command.New([]string{"true"}, "true")
	c1.Pid = cmd.Process.Pid
	j := job.New([]*command.Command{c1}, true)
	table.Add(j)

	assert.Eventually(t, func() bool { return !j.Alive() }, 2*time.Second, 10*time.Millisecond)
}

func TestReaperHoldsDuringBlockBracket(t *testing.T) {
	table := jobtable.New()
	table.SigchldBlock()
	core := Install(table, nil, false)
	defer core.Stop()

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())

	c1 := command.New([]string{"true"}, "true")
	c1.Pid = cmd.Process.Pid
	j := job.New([]*command.Command{c1}, true)
	table.Add(j)

	time.Sleep(100 * time.Millisecond)
	assert.True(t, j.Alive(), "reaper must not touch the job while blocked")

	table.SigchldUnblock()
	assert.Eventually(t, func() bool { return !j.Alive() }, 2*time.Second, 10*time.Millisecond)
}

func TestSigintSetsInterruptedFlag(t *testing.T) {
	table := jobtable.New()
	core := Install(table, nil, true)
	defer core.Stop()

	assert.False(t, core.Interrupted())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	assert.Eventually(t, func() bool { return core.Interrupted() }, time.Second, 5*time.Millisecond)

	core.ClearInterrupted()
	assert.False(t, core.Interrupted())
}
