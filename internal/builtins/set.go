package builtins

import (
	"fmt"
	"io"
	"strings"

	"github.com/xdsh-project/xdsh/internal/vars"
)

const setHelp = "usage: set [name[=value] ...]\n"

// setCmd implements `set` as a poor man's export: bare operands mark an
// existing variable exported, name=value operands assign and export
// in one step, and no operands print every currently exported variable as
// `set name='value'`. This is not POSIX `set`'s shell-option surface; that
// name is left reserved deliberately (see DESIGN.md).
func (d *Dispatcher) setCmd(argv []string, stdout, stderr io.Writer) int {
	args := argv[1:]
	if len(args) > 0 && args[0] == "--help" {
		io.WriteString(stdout, setHelp)
		return 0
	}

	if len(args) == 0 {
		for _, name := range d.Vars.Names() {
			if !d.Vars.IsExported(name) {
				continue
			}
			value, _ := d.Vars.Get(name)
			fmt.Fprintf(stdout, "set %s='%s'\n", name, value)
		}
		return 0
	}

	failed := false
	for _, arg := range args {
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value := arg[:eq], arg[eq+1:]
			if err := d.Vars.Put(name, value, true); err != nil {
				fmt.Fprintf(stderr, "set: %v\n", err)
				failed = true
			}
			continue
		}
		if !vars.ValidName(arg) {
			fmt.Fprintf(stderr, "set: %s: not a valid identifier\n", arg)
			failed = true
			continue
		}
		d.Vars.SetExported(arg, true)
	}
	if failed {
		return 1
	}
	return 0
}
