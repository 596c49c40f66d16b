// Package engine is the execution engine. It drives one Job
// (a pipeline of Commands) to completion in the foreground or launches it
// in the background, wiring pipes, redirections, process groups, and
// terminal ownership around each child.
package engine

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/jesseduffield/kill"
	"github.com/sirupsen/logrus"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/jobtable"
	"github.com/xdsh-project/xdsh/internal/pathsearch"
	"github.com/xdsh-project/xdsh/internal/terminal"
	"github.com/xdsh-project/xdsh/internal/vars"
)

// ReexecFlag is the hidden first argument main.go recognizes to re-enter
// the binary as a plain built-in runner instead of starting a shell. A
// built-in appearing anywhere but the fast path (a lone
// foreground command) still needs its own pid to take a slot in a pipe or
// to be backgrounded, and Go's fork/exec model gives a child no path back
// into arbitrary Go code before exec - re-executing the same binary with a
// marker argument is the idiomatic substitute (the same trick
// container-runtime tooling uses to run setup code "as the child").
const ReexecFlag = "__xdsh_builtin_exec__"

// Builtins is the Execution Engine's view of the builtins dispatcher: just
// enough to run the fast path and decide whether a program name names one.
// Defined here rather than imported from internal/builtins so neither
// package depends on the other; internal/shell wires a concrete
// *builtins.Dispatcher in, which satisfies this structurally.
type Builtins interface {
	IsBuiltin(name string) bool
	Run(name string, argv []string, stdin io.Reader, stdout, stderr io.Writer) int
}

// Engine owns the process-wide job-control state the Execution Engine
// needs: the Job Table, terminal ownership, the exported-variable view for
// child environments, and the built-ins dispatcher.
type Engine struct {
	Table    *jobtable.Table
	Term     *terminal.Terminal
	Vars     *vars.Variables
	Builtins Builtins
	Log      *logrus.Entry

	Interactive bool

	selfExe string
}

// New builds an Engine. selfExe is the absolute path to this binary
// (resolved once via os.Executable by the caller), used both for $SHELL and
// for the built-in re-exec path.
func New(table *jobtable.Table, term *terminal.Terminal, variables *vars.Variables, builtins Builtins, log *logrus.Entry, interactive bool, selfExe string) *Engine {
	return &Engine{
		Table:       table,
		Term:        term,
		Vars:        variables,
		Builtins:    builtins,
		Log:         log,
		Interactive: interactive,
		selfExe:     selfExe,
	}
}

// Execute drives one job to completion: a lone foreground built-in runs in-process
// (no fork); everything else is forked, piped, and either waited on
// (foreground) or registered in the Job Table (background). Returns the new
// last-exit-code.
func (e *Engine) Execute(j *job.Job) int {
	if !j.Background && len(j.Commands) == 1 && e.Builtins != nil && e.Builtins.IsBuiltin(j.Commands[0].Name()) {
		return e.runFastPathBuiltin(j.Commands[0])
	}

	if err := e.launch(j, !j.Background, nil); err != nil {
		e.cleanupFailure(j, err)
		return 1
	}

	j.LastActive = nowNano()

	if j.Background {
		if !j.Alive() {
			// Every stage failed before a child was ever started; there is
			// nothing to register.
			return job.ExitCode(j.LastStatus)
		}
		e.Table.Add(j)
		if e.Interactive {
			fmt.Fprintf(os.Stdout, "[%d] %d\n", j.JobID, j.Commands[0].Pid)
		}
		return 0
	}

	code := e.runForeground(j)
	if j.Alive() {
		// Stopped by the user (ctrl-Z); the job moves under job-table control
		// so fg/bg/jobs can find it. Its Notify flag was set when it stopped,
		// so the next refresh prints the Stopped line.
		e.Table.Add(j)
	}
	return code
}

// runForeground hands the terminal to the job, waits, and restores the
// shell's terminal state on the way back.
func (e *Engine) runForeground(j *job.Job) int {
	if err := e.Term.PutInForeground(j.Pgid); err != nil && e.Log != nil {
		e.Log.Debugf("put job pgid %d in foreground: %v", j.Pgid, err)
	}

	code := e.wait(j)

	if err := e.Term.PutInForeground(e.Term.ShellPgid()); err != nil && e.Log != nil {
		e.Log.Debugf("restore shell foreground: %v", err)
	}

	if j.Alive() {
		if modes, err := e.Term.Save(); err == nil {
			j.SavedTermModes = modes
		}
	}

	if err := e.Term.RestoreBaseline(); err != nil && e.Log != nil {
		e.Log.Debugf("restore shell termios: %v", err)
	}

	if e.Interactive {
		e.printForegroundOutcome(j)
	}

	return code
}

// printForegroundOutcome prints the blank-line-on-stop / signal-name-on-kill
// note after a foreground wait.
func (e *Engine) printForegroundOutcome(j *job.Job) {
	st := syscall.WaitStatus(uint32(j.LastStatus))
	switch {
	case st.Stopped():
		fmt.Println()
	case st.Signaled() && st.Signal() != syscall.SIGINT:
		name := signalDisplayName(st.Signal())
		if st.CoreDump() {
			name += " (core dumped)"
		}
		fmt.Println(name)
	}
}

func signalDisplayName(sig syscall.Signal) string {
	s := sig.String()
	const prefix = "signal "
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		s = s[len(prefix):]
	}
	return s
}

// wait blocks on every command with a live pid until the
// job is no longer alive or is stopped, retrying a single command's
// waitpid on EINTR. The Job Table's SIGCHLD block/unblock bracket keeps the
// async reaper (internal/signals) from racing this goroutine's direct
// waitpid calls for the same pids.
func (e *Engine) wait(j *job.Job) int {
	e.Table.SigchldBlock()
	defer e.Table.SigchldUnblock()

	for j.Alive() && !j.Stopped() {
		progressed := false
		for _, cmd := range j.Commands {
			if cmd.Pid == 0 || cmd.Reaped() {
				continue
			}
			if status, ok := e.Table.TakePendingStatus(cmd.Pid); ok {
				// The async reaper got to this pid before the block bracket
				// took effect; consume its buffered observation.
				e.Table.ApplyObservedStatus(j, cmd, status)
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
			e.Table.ApplyObservedStatus(j, cmd, int(status))
			progressed = true
		}
		if !progressed && j.Alive() && !j.Stopped() {
			// Nothing reaped this sweep (e.g. a stopped command waiting on
			// WCONTINUED); avoid a tight spin.
			time.Sleep(time.Millisecond)
		}
	}

	j.LastActive = time.Now().UnixNano()
	return job.ExitCode(j.LastStatus)
}

// cleanupFailure finishes a failed launch: launch already sent SIGKILL to
// every child it had managed to start before the failure (via
// jesseduffield/kill); this reaps them and hands the terminal back.
func (e *Engine) cleanupFailure(j *job.Job, cause error) {
	if e.Log != nil {
		e.Log.Errorf("job setup failed: %v", cause)
	}
	for _, cmd := range j.Commands {
		if cmd.Pid == 0 {
			continue
		}
		var status syscall.WaitStatus
		for {
			pid, err := syscall.Wait4(cmd.Pid, &status, 0, nil)
			if err == syscall.EINTR {
				continue
			}
			_ = pid
			break
		}
	}
	if err := e.Term.PutInForeground(e.Term.ShellPgid()); err != nil && e.Log != nil {
		e.Log.Debugf("restore shell foreground after failed job: %v", err)
	}
}

// resolveProgram decides what exec.Cmd.Path/Args should be for one command:
// a built-in outside the fast path re-execs this binary; an external
// program is resolved against $PATH (or used literally if it contains a
// slash). ok is false only when a bare external name could not be found, in
// which case the caller synthesizes the not-found exit without exec'ing
// anything real.
func (e *Engine) resolveProgram(cmd *command.Command) (path string, args []string, ok bool) {
	name := cmd.Name()
	if e.Builtins != nil && e.Builtins.IsBuiltin(name) {
		reexecArgs := append([]string{e.selfExe, ReexecFlag}, cmd.Argv...)
		return e.selfExe, reexecArgs, true
	}
	pathVar, havePath := e.Vars.Get("PATH")
	if !havePath {
		pathVar = pathsearch.FallbackPath
	}
	if resolved, found := pathsearch.FindIn(name, pathVar); found {
		return resolved, cmd.Argv, true
	}
	if containsSlash(name) {
		return name, cmd.Argv, true
	}
	return "", nil, false
}

func containsSlash(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return true
		}
	}
	return false
}

// classifyExecFailure maps a failed exec attempt to one of the three
// conventional codes a shell assigns to a child's own exec failure. Go's
// fork/exec path does not leave a live child process behind on a failed
// exec - the pre-exec trampoline reports the errno and _exits on its own -
// so there is no process left to print its own diagnostic; the parent
// synthesizes the same observable outcome (message on stderr, conventional
// exit code recorded against the Command) instead.
func classifyExecFailure(err error) (code int, message string) {
	var errno syscall.Errno
	if asErrno(err, &errno) {
		switch errno {
		case syscall.ENOENT:
			return 127, "command not found"
		case syscall.EACCES, syscall.EISDIR:
			return 126, "permission denied"
		}
	}
	if os.IsNotExist(err) {
		return 127, "command not found"
	}
	if os.IsPermission(err) {
		return 126, "permission denied"
	}
	return 1, err.Error()
}

func asErrno(err error, target *syscall.Errno) bool {
	for err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			*target = errno
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// killStartedCmd is a thin wrapper over jesseduffield/kill, used only to
// tear down an already-started *exec.Cmd during failure cleanup; with
// Setpgid set it takes down the whole process group, not just the leader.
func killStartedCmd(cmd *exec.Cmd) {
	_ = kill.Kill(cmd)
}
