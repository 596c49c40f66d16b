// Package job models an ordered pipeline of commands plus the
// process-group and counter state the Job Table and Execution Engine drive.
package job

import (
	"syscall"

	"github.com/xdsh-project/xdsh/internal/command"
)

// TerminalModes is the opaque terminal-mode snapshot saved/restored by the
// terminal adapter; job only carries it, it never inspects it.
type TerminalModes interface{}

// Job is an ordered pipeline of one or more Commands: the unit of job
// control.
type Job struct {
	Commands []*command.Command

	Background bool

	// Pgid is 0 before any child has been forked.
	Pgid int

	// UnreapedCount/StoppedCount track how many of Commands are not yet
	// reaped / are currently stopped. Invariant: 0 <= Stopped <= Unreaped
	// <= len(Commands).
	UnreapedCount int
	StoppedCount  int

	// LastStatus mirrors the last observed Command status.
	LastStatus int

	// JobID is assigned by the Job Table; 0 until added.
	JobID int

	// LastActive is a monotonic nanosecond counter, updated whenever any
	// child's state changes or the Job is waited on.
	LastActive int64

	// Notify is set by the async reaper when the Job becomes not-alive or
	// stopped, and cleared by Job Table refresh after printing a line.
	Notify bool

	// SavedTermModes holds the Job's own terminal mode snapshot, captured
	// when it is suspended or backgrounded while holding the terminal, so
	// `fg` can restore it.
	SavedTermModes TerminalModes
}

// New builds a Job over the given commands. Commands must be non-empty.
func New(commands []*command.Command, background bool) *Job {
	return &Job{
		Commands:      commands,
		Background:    background,
		UnreapedCount: len(commands),
		LastStatus:    command.NoWaitStatus,
	}
}

// Alive reports whether any command in the job has not yet been reaped.
func (j *Job) Alive() bool {
	return j.UnreapedCount > 0
}

// Stopped reports whether every unreaped command in the job is currently
// stopped.
func (j *Job) Stopped() bool {
	return j.StoppedCount > 0 && j.StoppedCount == j.UnreapedCount
}

// ApplyStatus updates the job's counters given a freshly observed raw wait
// status for one of its commands: a continue un-stops it, a stop marks it
// stopped, and exit/signal marks it reaped. cmd.LastStatus must already hold
// the *previous* status; the caller passes the newly observed status in
// newStatus.
func ApplyStatus(j *Job, cmd *command.Command, newStatus int) {
	wasStopped := cmd.WaitObserved() && cmd.Status().Stopped()

	st := syscall.WaitStatus(uint32(newStatus))

	switch {
	case st.Continued():
		if wasStopped {
			j.StoppedCount--
		}
	case st.Stopped():
		if !wasStopped {
			j.StoppedCount++
		}
	case st.Exited() || st.Signaled():
		if wasStopped {
			j.StoppedCount--
		}
		j.UnreapedCount--
	}

	cmd.LastStatus = newStatus
	j.LastStatus = newStatus
}

// ExitCode computes the conventional shell exit code for the job's last
// observed status: WEXITSTATUS for exited, 128+WTERMSIG for signalled,
// 128+WSTOPSIG for stopped.
func ExitCode(status int) int {
	st := syscall.WaitStatus(uint32(status))
	switch {
	case st.Exited():
		return st.ExitStatus()
	case st.Signaled():
		return 128 + int(st.Signal())
	case st.Stopped():
		return 128 + int(st.StopSignal())
	default:
		return 0
	}
}
