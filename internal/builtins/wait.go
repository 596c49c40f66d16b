package builtins

import (
	"syscall"
	"time"

	"github.com/xdsh-project/xdsh/internal/job"
)

// waitForeground blocks on every live command of j the same way the
// execution engine's foreground wait does, under the same bracket: the Job
// Table's SIGCHLD block/unblock keeps the async reaper from racing this
// goroutine's direct waitpid calls for the same pids. fg needs its own copy
// of this loop (rather than calling into internal/engine) because a job
// resumed via fg was not launched by this process instance's call to
// Execute; it is already registered in the Job Table and this builtin only
// owns its second, post-resume wait.
func (d *Dispatcher) waitForeground(j *job.Job) int {
	d.Table.SigchldBlock()
	defer d.Table.SigchldUnblock()

	for j.Alive() && !j.Stopped() {
		progressed := false
		for _, cmd := range j.Commands {
			if cmd.Pid == 0 || cmd.Reaped() {
				continue
			}
			if status, ok := d.Table.TakePendingStatus(cmd.Pid); ok {
				d.Table.ApplyObservedStatus(j, cmd, status)
				progressed = true
				continue
			}
			var status syscall.WaitStatus
			pid, err := syscall.Wait4(cmd.Pid, &status, syscall.WUNTRACED|syscall.WCONTINUED, nil)
			if err == syscall.EINTR {
				continue
			}
			if err != nil || pid <= 0 {
				continue
			}
			d.Table.ApplyObservedStatus(j, cmd, int(status))
			progressed = true
		}
		if !progressed && j.Alive() && !j.Stopped() {
			time.Sleep(time.Millisecond)
		}
	}

	j.LastActive = time.Now().UnixNano()
	return job.ExitCode(j.LastStatus)
}

// pollBackground keeps polling a resumed job via a non-blocking variant of
// wait so its counters refresh: a single internal/tasks task repeatedly
// drains WNOHANG wait observations for j until it is no longer alive. The
// async SIGCHLD reaper (internal/signals) keeps the Job Table current
// independently of this; this task only shortens the window before a `jobs`
// run right after `bg` reflects a fast-exiting command.
func (d *Dispatcher) pollBackground(j *job.Job) {
	if d.Tasks == nil {
		return
	}
	_ = d.Tasks.NewTask(func(stop chan struct{}) {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for j.Alive() {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.Table.SigchldBlock()
				for _, cmd := range j.Commands {
					if cmd.Pid == 0 || cmd.Reaped() {
						continue
					}
					if status, ok := d.Table.TakePendingStatus(cmd.Pid); ok {
						d.Table.ApplyObservedStatus(j, cmd, status)
						continue
					}
					var status syscall.WaitStatus
					pid, err := syscall.Wait4(cmd.Pid, &status, syscall.WNOHANG|syscall.WUNTRACED|syscall.WCONTINUED, nil)
					if err != nil || pid <= 0 {
						continue
					}
					d.Table.ApplyObservedStatus(j, cmd, int(status))
				}
				d.Table.SigchldUnblock()
			}
		}
	})
}
