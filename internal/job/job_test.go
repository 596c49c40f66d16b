package job

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xdsh-project/xdsh/internal/command"
)

func exitStatus(code int) int {
	return int(syscall.WaitStatus(uint32(code << 8)))
}

// stopStatus encodes a WIFSTOPPED wait status the way the kernel does: the
// low byte is 0x7f and the stop signal sits in the next byte.
func stopStatus(sig syscall.Signal) int {
	return int(syscall.WaitStatus(uint32(0x7f | (int(sig) << 8))))
}

func contStatus() int {
	return int(syscall.WaitStatus(0xffff))
}

func TestNewInvariants(t *testing.T) {
	cmds := []*command.Command{command.New([]string{"a"}, "a"), command.New([]string{"b"}, "b")}
	j := New(cmds, false)
	assert.Equal(t, 2, j.UnreapedCount)
	assert.Equal(t, 0, j.StoppedCount)
	assert.True(t, j.Alive())
	assert.False(t, j.Stopped())
}

func TestApplyStatusStopThenContinueThenExit(t *testing.T) {
	cmd := command.New([]string{"cat"}, "cat")
	j := New([]*command.Command{cmd}, false)

	ApplyStatus(j, cmd, stopStatus(syscall.SIGTSTP))
	assert.Equal(t, 1, j.StoppedCount)
	assert.True(t, j.Stopped())

	ApplyStatus(j, cmd, contStatus())
	assert.Equal(t, 0, j.StoppedCount)
	assert.False(t, j.Stopped())
	assert.True(t, j.Alive())

	ApplyStatus(j, cmd, exitStatus(0))
	assert.Equal(t, 0, j.UnreapedCount)
	assert.False(t, j.Alive())
}

func TestApplyStatusStoppedThenKilledDecrementsBoth(t *testing.T) {
	cmd := command.New([]string{"cat"}, "cat")
	j := New([]*command.Command{cmd}, false)

	ApplyStatus(j, cmd, stopStatus(syscall.SIGSTOP))
	assert.Equal(t, 1, j.StoppedCount)

	killed := int(syscall.WaitStatus(uint32(syscall.SIGKILL)))
	ApplyStatus(j, cmd, killed)
	assert.Equal(t, 0, j.StoppedCount)
	assert.Equal(t, 0, j.UnreapedCount)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(exitStatus(0)))
	assert.Equal(t, 3, ExitCode(exitStatus(3)))
	assert.Equal(t, 128+int(syscall.SIGKILL), ExitCode(int(syscall.WaitStatus(uint32(syscall.SIGKILL)))))
}
