package builtins

import (
	"fmt"
	"io"
	"syscall"

	"github.com/xdsh-project/xdsh/internal/terminal"
)

const fgHelp = "usage: fg [jobspec]\n"
const bgHelp = "usage: bg [jobspec ...]\n"

// fgCmd implements `fg [jobspec]`: restores the job's saved terminal
// modes, sends SIGCONT to its whole process group, transfers the terminal,
// waits, hands the terminal back to the shell, and then saves the job's
// terminal modes again if it's still alive (re-stopped).
func (d *Dispatcher) fgCmd(argv []string, stdout, stderr io.Writer) int {
	if len(argv) > 1 && argv[1] == "--help" {
		io.WriteString(stdout, fgHelp)
		return 0
	}
	if !d.Term.Interactive() {
		io.WriteString(stderr, "fg: no job control in this shell\n")
		return 1
	}

	spec := ""
	if len(argv) > 1 {
		spec = argv[1]
	}
	j, err := ResolveJobspec(d.Table, spec)
	if err != nil {
		fmt.Fprintf(stderr, "fg: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, pipelineText(j))

	if modes, ok := j.SavedTermModes.(terminal.Modes); ok {
		_ = d.Term.Restore(modes)
	}

	j.Background = false
	if j.Pgid != 0 {
		_ = syscall.Kill(-j.Pgid, syscall.SIGCONT)
	}

	if err := d.Term.PutInForeground(j.Pgid); err != nil && d.Log != nil {
		d.Log.Debugf("fg: put job pgid %d in foreground: %v", j.Pgid, err)
	}

	code := d.waitForeground(j)

	if err := d.Term.PutInForeground(d.Term.ShellPgid()); err != nil && d.Log != nil {
		d.Log.Debugf("fg: restore shell foreground: %v", err)
	}
	if j.Alive() {
		if modes, err := d.Term.Save(); err == nil {
			j.SavedTermModes = modes
		}
		j.Notify = true
	}
	if err := d.Term.RestoreBaseline(); err != nil && d.Log != nil {
		d.Log.Debugf("fg: restore shell termios: %v", err)
	}

	return code
}

// bgCmd implements `bg [jobspec...]`: each named job (default
// current) must be alive and stopped; SIGCONT goes to its pgid, it's marked
// background, and a background task polls its state with a non-blocking
// wait so the Job Table's counters refresh promptly.
func (d *Dispatcher) bgCmd(argv []string, stdout, stderr io.Writer) int {
	if len(argv) > 1 && argv[1] == "--help" {
		io.WriteString(stdout, bgHelp)
		return 0
	}
	if !d.Term.Interactive() {
		io.WriteString(stderr, "bg: no job control in this shell\n")
		return 1
	}

	specs := argv[1:]
	if len(specs) == 0 {
		specs = []string{""}
	}

	failed := false
	for _, spec := range specs {
		j, err := ResolveJobspec(d.Table, spec)
		if err != nil {
			fmt.Fprintf(stderr, "bg: %v\n", err)
			failed = true
			continue
		}
		if !j.Alive() || !j.Stopped() {
			fmt.Fprintf(stderr, "bg: job %s is not stopped\n", spec)
			failed = true
			continue
		}

		j.Background = true
		if j.Pgid != 0 {
			_ = syscall.Kill(-j.Pgid, syscall.SIGCONT)
		}
		fmt.Fprintf(stdout, "[%d]+ %s &\n", j.JobID, pipelineText(j))
		d.pollBackground(j)
	}

	if failed {
		return 1
	}
	return 0
}
