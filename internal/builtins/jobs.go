package builtins

import (
	"fmt"
	"io"
)

const jobsHelp = "usage: jobs [-l] [-p]\n"

// jobsCmd implements `jobs [-l] [-p]`.
func (d *Dispatcher) jobsCmd(argv []string, stdout, stderr io.Writer) int {
	detailed := false
	pidsOnly := false

	for _, arg := range argv[1:] {
		switch arg {
		case "--help":
			io.WriteString(stdout, jobsHelp)
			return 0
		case "-l":
			detailed = true
		case "-p":
			pidsOnly = true
		default:
			fmt.Fprintf(stderr, "jobs: invalid option %q\n", arg)
			io.WriteString(stderr, jobsHelp)
			return 2
		}
	}

	// Bring the +/- markers up to date and print before refreshing: a
	// finished-but-unreported job must appear in this listing. The refresh
	// afterwards clears the notifications this listing just delivered and
	// drops the finished jobs.
	d.Table.RecomputeCurrentPrevious()
	io.WriteString(stdout, d.Table.PrintStatusAll(detailed, pidsOnly))
	d.Table.Refresh(nil)
	return 0
}
