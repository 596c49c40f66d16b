package engine

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/shellerr"
)

// runFastPathBuiltin runs a lone foreground built-in in the shell process,
// with its fds backed up and redirected first and restored on every exit
// path.
func (e *Engine) runFastPathBuiltin(cmd *command.Command) int {
	backup, err := backupStdio()
	if err != nil {
		if e.Log != nil {
			e.Log.Errorf("builtin fd backup failed: %v", err)
		}
		return 1
	}
	defer backup.restore()

	st, err := e.resolveStage(cmd, 0, 1, nil, nil)
	if err != nil {
		if e.Log != nil {
			e.Log.Errorf("builtin redirection failed: %v", err)
		}
		return 1
	}
	defer st.close()

	if err := applyStdio(st); err != nil {
		if e.Log != nil {
			e.Log.Errorf("builtin fd redirect failed: %v", err)
		}
		return 1
	}

	os.Stdout.Sync()
	code := e.Builtins.Run(cmd.Name(), cmd.Argv, os.Stdin, os.Stdout, os.Stderr)
	os.Stdout.Sync()

	cmd.LastStatus = exitedStatus(code)
	return code
}

// launch forks the pipeline: N-1 pipes, one fork per Command, pgid
// assignment, and redirection.
func (e *Engine) launch(j *job.Job, foreground bool, captureOut *os.File) error {
	n := len(j.Commands)
	var prevRead *os.File
	var started []*exec.Cmd

	abort := func(cause error) error {
		for _, sc := range started {
			killStartedCmd(sc)
		}
		return cause
	}

	for i, cmd := range j.Commands {
		st, err := e.resolveStage(cmd, i, n, prevRead, captureOut)
		if err != nil {
			return abort(shellerr.Wrap(err))
		}

		path, args, ok := e.resolveProgram(cmd)
		if !ok {
			fmt.Fprintf(os.Stderr, "xdsh: %s: command not found\n", cmd.Name())
			job.ApplyStatus(j, cmd, exitedStatus(127))
			st.close()
			prevRead = st.nextRead
			continue
		}

		execCmd := &exec.Cmd{
			Path:   path,
			Args:   args,
			Env:    e.Vars.CreateEnvp(),
			Stdin:  st.stdin,
			Stdout: st.stdout,
			Stderr: st.stderr,
			SysProcAttr: e.sysProcAttr(i, j, foreground),
		}

		if err := execCmd.Start(); err != nil {
			code, message := classifyExecFailure(err)
			fmt.Fprintf(os.Stderr, "xdsh: %s: %s\n", cmd.Name(), message)
			job.ApplyStatus(j, cmd, exitedStatus(code))
			st.close()
			prevRead = st.nextRead
			continue
		}

		cmd.Pid = execCmd.Process.Pid
		if i == 0 {
			j.Pgid = cmd.Pid
		}
		_ = syscall.Setpgid(cmd.Pid, j.Pgid)

		started = append(started, execCmd)
		st.close()
		prevRead = st.nextRead
	}

	return nil
}

// sysProcAttr builds the child's process-group/terminal setup for one fork
// position: the first command creates the job's pgid (and, if this job is
// foreground in an interactive shell, atomically takes the controlling
// terminal as part of the same fork/exec syscall sequence); later commands
// join the pgid the first one established.
func (e *Engine) sysProcAttr(i int, j *job.Job, foreground bool) *syscall.SysProcAttr {
	if i == 0 {
		if foreground && e.Term.Interactive() {
			return &syscall.SysProcAttr{
				Setpgid:    true,
				Pgid:       0,
				Foreground: true,
				Ctty:       e.Term.Fd(),
			}
		}
		return &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
	}
	return &syscall.SysProcAttr{Setpgid: true, Pgid: j.Pgid}
}

type stdioBackup struct {
	in, out, err *os.File
}

// backupStdio dup's the current stdin/stdout/stderr so runFastPathBuiltin
// can restore them after running a built-in against redirected fds.
func backupStdio() (*stdioBackup, error) {
	in, err := dupRetry(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	out, err := dupRetry(int(os.Stdout.Fd()))
	if err != nil {
		in.Close()
		return nil, err
	}
	errF, err := dupRetry(int(os.Stderr.Fd()))
	if err != nil {
		in.Close()
		out.Close()
		return nil, err
	}
	return &stdioBackup{in: in, out: out, err: errF}, nil
}

func dupRetry(fd int) (*os.File, error) {
	for {
		newFd, err := syscall.Dup(fd)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		return os.NewFile(uintptr(newFd), "backup"), nil
	}
}

func (b *stdioBackup) restore() {
	os.Stdout.Sync()
	os.Stderr.Sync()
	dup2Retry(int(b.in.Fd()), int(os.Stdin.Fd()))
	dup2Retry(int(b.out.Fd()), int(os.Stdout.Fd()))
	dup2Retry(int(b.err.Fd()), int(os.Stderr.Fd()))
	b.in.Close()
	b.out.Close()
	b.err.Close()
}

// applyStdio dup2's the resolved stage's stdin/stdout/stderr onto fds
// 0/1/2, the no-fork equivalent of the three redirections applied
// in a forked child.
func applyStdio(st *stage) error {
	if st.stdin != os.Stdin {
		if err := dup2Retry(int(st.stdin.Fd()), int(os.Stdin.Fd())); err != nil {
			return err
		}
	}
	if st.stdout != os.Stdout {
		if err := dup2Retry(int(st.stdout.Fd()), int(os.Stdout.Fd())); err != nil {
			return err
		}
	}
	if st.stderr != os.Stderr {
		if err := dup2Retry(int(st.stderr.Fd()), int(os.Stderr.Fd())); err != nil {
			return err
		}
	}
	return nil
}

func dup2Retry(oldFd, newFd int) error {
	for {
		err := syscall.Dup2(oldFd, newFd)
		if err == syscall.EINTR {
			continue
		}
		return err
	}
}
