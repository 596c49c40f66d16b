// Package builtins implements the name-to-function built-ins
// dispatcher (jobs, fg, bg, kill, alias, unalias, set) that either runs in
// the execution engine's fast path (a lone foreground built-in, no fork) or
// in a re-exec'd child occupying a pipeline/background slot. Every built-in
// follows the same exit-code convention: 0 full success, 2 usage error, 1
// otherwise; --help prints usage to stdout and returns 0.
package builtins

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/xdsh-project/xdsh/internal/jobtable"
	"github.com/xdsh-project/xdsh/internal/tasks"
	"github.com/xdsh-project/xdsh/internal/terminal"
	"github.com/xdsh-project/xdsh/internal/vars"
)

// names lists every built-in this dispatcher recognizes.
var names = map[string]bool{
	"jobs":    true,
	"fg":      true,
	"bg":      true,
	"kill":    true,
	"alias":   true,
	"unalias": true,
	"set":     true,
}

// Dispatcher is the process-wide built-ins table, wired to the Job
// Table, Terminal Adapter, and Variable/Alias adapters its built-ins
// operate on. It satisfies internal/engine's Builtins interface
// structurally, without either package importing the other.
type Dispatcher struct {
	Table   *jobtable.Table
	Term    *terminal.Terminal
	Vars    *vars.Variables
	Aliases *vars.Aliases
	Tasks   *tasks.TaskManager
	Log     *logrus.Entry
}

// New builds a Dispatcher over the given process-wide adapters.
func New(table *jobtable.Table, term *terminal.Terminal, variables *vars.Variables, aliases *vars.Aliases, taskManager *tasks.TaskManager, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		Table:   table,
		Term:    term,
		Vars:    variables,
		Aliases: aliases,
		Tasks:   taskManager,
		Log:     log,
	}
}

// IsBuiltin reports whether name is one of this dispatcher's built-ins.
func (d *Dispatcher) IsBuiltin(name string) bool {
	return names[name]
}

// Run dispatches to the named built-in, returning its exit code. argv[0] is
// the built-in's own name.
func (d *Dispatcher) Run(name string, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	switch name {
	case "jobs":
		return d.jobsCmd(argv, stdout, stderr)
	case "fg":
		return d.fgCmd(argv, stdout, stderr)
	case "bg":
		return d.bgCmd(argv, stdout, stderr)
	case "kill":
		return d.killCmd(argv, stdout, stderr)
	case "alias":
		return d.aliasCmd(argv, stdout, stderr)
	case "unalias":
		return d.unaliasCmd(argv, stdout, stderr)
	case "set":
		return d.setCmd(argv, stdout, stderr)
	default:
		io.WriteString(stderr, name+": not a builtin\n")
		return 1
	}
}
