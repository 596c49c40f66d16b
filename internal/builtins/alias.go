package builtins

import (
	"fmt"
	"io"
	"strings"
)

const aliasHelp = "usage: alias [name[=value] ...]\n"
const unaliasHelp = "usage: unalias [-a] name ...\n"

// aliasCmd implements `alias`: with no operands it prints every
// alias as `alias name='value'`; a bare name prints just that one; a
// name=value operand defines it.
func (d *Dispatcher) aliasCmd(argv []string, stdout, stderr io.Writer) int {
	args := argv[1:]
	if len(args) > 0 && args[0] == "--help" {
		io.WriteString(stdout, aliasHelp)
		return 0
	}

	if len(args) == 0 {
		for _, name := range d.Aliases.Names() {
			value, _ := d.Aliases.Get(name)
			fmt.Fprintf(stdout, "alias %s='%s'\n", name, value)
		}
		return 0
	}

	failed := false
	for _, arg := range args {
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value := arg[:eq], arg[eq+1:]
			if err := d.Aliases.Put(name, value); err != nil {
				fmt.Fprintf(stderr, "alias: %v\n", err)
				failed = true
			}
			continue
		}
		value, ok := d.Aliases.Get(arg)
		if !ok {
			fmt.Fprintf(stderr, "alias: %s: not found\n", arg)
			failed = true
			continue
		}
		fmt.Fprintf(stdout, "alias %s='%s'\n", arg, value)
	}
	if failed {
		return 1
	}
	return 0
}

// unaliasCmd implements `unalias -a` / `unalias name ...`.
func (d *Dispatcher) unaliasCmd(argv []string, stdout, stderr io.Writer) int {
	args := argv[1:]
	if len(args) > 0 && args[0] == "--help" {
		io.WriteString(stdout, unaliasHelp)
		return 0
	}
	if len(args) > 0 && args[0] == "-a" {
		d.Aliases.RemoveAll()
		return 0
	}
	if len(args) == 0 {
		io.WriteString(stderr, unaliasHelp)
		return 2
	}

	failed := false
	for _, name := range args {
		if _, ok := d.Aliases.Get(name); !ok {
			fmt.Fprintf(stderr, "unalias: %s: not found\n", name)
			failed = true
			continue
		}
		d.Aliases.Remove(name)
	}
	if failed {
		return 1
	}
	return 0
}
