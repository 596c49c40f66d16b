package builtins

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"github.com/xdsh-project/xdsh/internal/signals"
)

const killHelp = "usage: kill [-s sigspec | -n signum | -sigspec] pid|%jobspec ...\n       kill -l [sigspec|signum]\n"

// killCmd implements `kill`: -l lists/translates signals; -s/-n/-SIG
// name the delivered signal (default SIGTERM); operands are pids or
// %jobspecs, the latter broadcast to the job's whole process group when the
// shell is interactive, otherwise delivered to each command's pid
// individually via the Job Table.
func (d *Dispatcher) killCmd(argv []string, stdout, stderr io.Writer) int {
	args := argv[1:]

	if len(args) > 0 && args[0] == "--help" {
		io.WriteString(stdout, killHelp)
		return 0
	}

	if len(args) > 0 && args[0] == "-l" {
		return d.killList(args[1:], stdout, stderr)
	}

	sig := syscall.SIGTERM
	i := 0
	if i < len(args) && strings.HasPrefix(args[i], "-") && args[i] != "-" {
		opt := args[i]
		switch opt {
		case "-s":
			i++
			if i >= len(args) {
				io.WriteString(stderr, killHelp)
				return 2
			}
			num, ok := signals.NumberOf(args[i])
			if !ok {
				fmt.Fprintf(stderr, "kill: %s: invalid signal specification\n", args[i])
				return 1
			}
			sig = syscall.Signal(num)
			i++
		case "-n":
			i++
			if i >= len(args) {
				io.WriteString(stderr, killHelp)
				return 2
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintf(stderr, "kill: %s: invalid signal number\n", args[i])
				return 1
			}
			sig = syscall.Signal(n)
			i++
		default:
			num, ok := signals.NumberOf(strings.TrimPrefix(opt, "-"))
			if !ok {
				fmt.Fprintf(stderr, "kill: %s: invalid signal specification\n", opt)
				return 1
			}
			sig = syscall.Signal(num)
			i++
		}
	}

	if i >= len(args) {
		io.WriteString(stderr, killHelp)
		return 2
	}

	failed := false
	for ; i < len(args); i++ {
		if err := d.killOperand(args[i], sig); err != nil {
			fmt.Fprintf(stderr, "kill: %s: %v\n", args[i], err)
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func (d *Dispatcher) killOperand(operand string, sig syscall.Signal) error {
	if strings.HasPrefix(operand, "%") {
		j, err := ResolveJobspec(d.Table, operand)
		if err != nil {
			return err
		}
		if d.Term.Interactive() && j.Pgid != 0 {
			return syscall.Kill(-j.Pgid, sig)
		}
		return d.Table.Kill(j, sig)
	}

	pid, err := strconv.Atoi(operand)
	if err != nil {
		return fmt.Errorf("arguments must be process or job IDs")
	}
	return syscall.Kill(pid, sig)
}

func (d *Dispatcher) killList(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		for _, n := range signals.ListAll() {
			name, _ := signals.NameOf(n)
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	spec := args[0]
	if n, err := strconv.Atoi(spec); err == nil {
		name, ok := signals.NameOf(n)
		if !ok {
			fmt.Fprintf(stderr, "kill: %s: invalid signal number\n", spec)
			return 1
		}
		fmt.Fprintln(stdout, name)
		return 0
	}

	num, ok := signals.NumberOf(spec)
	if !ok {
		fmt.Fprintf(stderr, "kill: %s: invalid signal specification\n", spec)
		return 1
	}
	fmt.Fprintln(stdout, num)
	return 0
}
