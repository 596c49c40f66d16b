package command

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetsDefaults(t *testing.T) {
	cmd := New([]string{"echo", "hi"}, "echo hi")
	assert.Equal(t, "echo", cmd.Name())
	assert.Equal(t, NoWaitStatus, cmd.LastStatus)
	assert.False(t, cmd.WaitObserved())
	assert.False(t, cmd.Reaped())
	assert.False(t, cmd.Stopped())
}

func TestReapedOnExit(t *testing.T) {
	cmd := New([]string{"true"}, "true")
	// Simulate an observed exit(0) status the way the Job Table would after
	// decoding a wait4() result.
	cmd.LastStatus = 0
	assert.True(t, cmd.WaitObserved())
	assert.True(t, cmd.Reaped())
	assert.Equal(t, 0, cmd.Status().ExitStatus())
}

func TestStoppedNotReaped(t *testing.T) {
	cmd := New([]string{"cat"}, "cat")
	stopped := syscall.WaitStatus(uint32(0x7f | (int(syscall.SIGTSTP) << 8)))
	cmd.LastStatus = int(stopped)
	assert.True(t, cmd.Stopped())
	assert.False(t, cmd.Reaped())
}
