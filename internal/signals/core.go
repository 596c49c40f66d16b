// Package signals implements the signal-handling core shared by the whole
// process: SIGCHLD reaping into the Job Table, the interactive shell's
// ignore list, and the cooperative SIGINT flag the line editor polls.
package signals

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/jobtable"
)

// Core owns every signal.Notify registration the shell makes. Go resets a
// caught signal's disposition to default across exec() (only an explicit
// SIG_IGN survives exec, and signal.Notify never sets that), so a child
// started after Install runs with default dispositions for every signal
// registered here without any extra reset call before exec.
type Core struct {
	table *jobtable.Table
	log   *logrus.Entry

	sigchld chan os.Signal
	sigint  chan os.Signal
	ignored chan os.Signal

	stopCh chan struct{}

	interrupted atomic.Bool
}

// Install registers the shell's signal handlers and starts the reaper.
// When interactive is false (e.g. `-c command` mode) the job-control
// specific ignore list and SIGINT cooperation are skipped; the process
// behaves like any ordinary foreground program for those signals.
func Install(table *jobtable.Table, log *logrus.Entry, interactive bool) *Core {
	c := &Core{
		table:   table,
		log:     log,
		sigchld: make(chan os.Signal, 64),
		stopCh:  make(chan struct{}),
	}

	signal.Notify(c.sigchld, syscall.SIGCHLD)
	go c.runReaper()

	if interactive {
		c.sigint = make(chan os.Signal, 1)
		signal.Notify(c.sigint, syscall.SIGINT)
		go c.runSigint()

		c.ignored = make(chan os.Signal, 8)
		signal.Notify(c.ignored, syscall.SIGTSTP, syscall.SIGQUIT, syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGTERM)
		go c.drainIgnored()
	}

	return c
}

// Stop unregisters every handler. Used on shell exit and in tests.
func (c *Core) Stop() {
	close(c.stopCh)
	signal.Stop(c.sigchld)
	if c.sigint != nil {
		signal.Stop(c.sigint)
	}
	if c.ignored != nil {
		signal.Stop(c.ignored)
	}
}

func (c *Core) drainIgnored() {
	for {
		select {
		case <-c.ignored:
		case <-c.stopCh:
			return
		}
	}
}

func (c *Core) runSigint() {
	for {
		select {
		case <-c.sigint:
			c.interrupted.Store(true)
		case <-c.stopCh:
			return
		}
	}
}

// Interrupted reports whether SIGINT arrived since the last ClearInterrupted.
// The external line editor polls this to abort the current read.
func (c *Core) Interrupted() bool {
	return c.interrupted.Load()
}

// ClearInterrupted resets the cooperative SIGINT flag, normally called right
// after a prompt starts a fresh read.
func (c *Core) ClearInterrupted() {
	c.interrupted.Store(false)
}

func (c *Core) runReaper() {
	for {
		select {
		case <-c.sigchld:
			c.reapAvailable()
		case <-c.stopCh:
			return
		}
	}
}

// reapAvailable drains every exited/stopped/continued child currently
// reportable via wait4(WNOHANG), updating the Job Table for each. If the
// table is mid block/unblock bracket it waits for the bracket to close
// first, so a critical section in the main flow never observes a Job
// mutate underneath it.
func (c *Core) reapAvailable() {
	if c.table.Blocked() {
		select {
		case <-c.table.WaitUnblocked():
		case <-c.stopCh:
			return
		}
	}

	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG|syscall.WUNTRACED|syscall.WCONTINUED, nil)
		if err != nil || pid <= 0 {
			return
		}

		j := c.table.GetWithPid(pid)
		if j == nil {
			// The child raced its own registration (a foreground wait loop or
			// a Table.Add that hasn't run yet); buffer the status so whoever
			// owns the pid can still observe it.
			c.table.AddPendingStatus(pid, int(status))
			continue
		}
		var target *command.Command
		for _, cmd := range j.Commands {
			if cmd.Pid == pid {
				target = cmd
				break
			}
		}
		if target == nil {
			c.table.AddPendingStatus(pid, int(status))
			continue
		}
		c.table.ApplyObservedStatus(j, target, int(status))
		if c.log != nil {
			c.log.Debugf("reaped pid %d status %#x", pid, uint32(status))
		}
	}
}
