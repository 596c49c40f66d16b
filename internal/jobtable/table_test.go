package jobtable

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
)

func newTestJob(bg bool) *job.Job {
	cmd := command.New([]string{"sleep", "30"}, "sleep 30")
	cmd.Pid = 12345
	return job.New([]*command.Command{cmd}, bg)
}

func TestAddAssignsIncreasingJobIDs(t *testing.T) {
	table := New()
	j1 := newTestJob(true)
	j2 := newTestJob(true)

	table.Add(j1)
	table.Add(j2)

	assert.Equal(t, 1, j1.JobID)
	assert.Equal(t, 2, j2.JobID)
}

func TestRefreshDropsExitedJobs(t *testing.T) {
	table := New()
	j := newTestJob(true)
	table.Add(j)

	exited := int(syscall.WaitStatus(uint32(0)))
	table.ApplyObservedStatus(j, j.Commands[0], exited)
	assert.True(t, j.Notify)

	var notified []string
	table.Refresh(func(line string) { notified = append(notified, line) })

	assert.Len(t, notified, 1)
	assert.Empty(t, table.All())
}

func TestCurrentPreviousPicksNewestStoppedFirst(t *testing.T) {
	table := New()
	j1 := newTestJob(true)
	j2 := newTestJob(true)
	table.Add(j1)
	table.Add(j2)

	j1.LastActive = 100
	j2.LastActive = 200

	table.Refresh(nil)
	assert.Equal(t, j2, table.GetCurrent())
	assert.Equal(t, j1, table.GetPrevious())

	stopStatus := int(syscall.WaitStatus(uint32(0x7f | (int(syscall.SIGTSTP) << 8))))
	table.ApplyObservedStatus(j1, j1.Commands[0], stopStatus)
	table.Refresh(nil)

	assert.Equal(t, j1, table.GetCurrent())
}

func TestSigchldBlockUnblockNesting(t *testing.T) {
	table := New()
	assert.False(t, table.Blocked())
	table.SigchldBlock()
	table.SigchldBlock()
	assert.True(t, table.Blocked())
	table.SigchldUnblock()
	assert.True(t, table.Blocked())
	table.SigchldUnblock()
	assert.False(t, table.Blocked())
}

func TestPrintStatusAllBackgroundRunningLine(t *testing.T) {
	table := New()
	j := newTestJob(true)
	table.Add(j)
	table.Refresh(nil)

	out := table.PrintStatusAll(false, false)
	assert.Contains(t, out, "[1]+  Running")
	assert.Contains(t, out, "sleep 30 &")
}

func TestPendingStatusBuffersUnknownPid(t *testing.T) {
	table := New()
	table.AddPendingStatus(4321, 0)

	j := newTestJob(true)
	j.Commands[0].Pid = 4321
	table.Add(j)

	assert.False(t, j.Alive(), "a status reaped before Add is applied on the way in")
	_, ok := table.TakePendingStatus(4321)
	assert.False(t, ok)
}

func TestGetWithPidAndID(t *testing.T) {
	table := New()
	j := newTestJob(true)
	table.Add(j)

	assert.Equal(t, j, table.GetWithPid(12345))
	assert.Equal(t, j, table.GetWithID(j.JobID))
	assert.Nil(t, table.GetWithPid(99999))
}
