// Package terminal owns the controlling terminal: interactivity detection
// and save/restore of termios state across foreground/background handoffs.
package terminal

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Modes is an opaque snapshot of termios state, handed back to callers that
// only need to save and later restore it (e.g. a Job's SavedTermModes).
type Modes struct {
	termios unix.Termios
}

// Terminal owns the shell's controlling-terminal bookkeeping: whether the
// shell is interactive, its own process group, and the baseline termios to
// restore on every return from a foreground job.
type Terminal struct {
	fd          int
	interactive bool
	shellPgid   int
	baseline    Modes
}

// Open detects interactivity (stdin and stdout both ttys and the caller
// requested interactive input), and if interactive, puts the shell in its
// own process group, takes the controlling terminal, and saves the
// baseline termios.
func Open(requestedInteractive bool) (*Terminal, error) {
	t := &Terminal{fd: int(os.Stdin.Fd())}

	if !requestedInteractive || !isTTY(int(os.Stdin.Fd())) || !isTTY(int(os.Stdout.Fd())) {
		return t, nil
	}
	t.interactive = true

	t.shellPgid = os.Getpid()
	if err := retryEINTR(func() error {
		return syscall.Setpgid(0, t.shellPgid)
	}); err != nil {
		return nil, err
	}

	if err := t.PutInForeground(t.shellPgid); err != nil {
		return nil, err
	}

	modes, err := t.Save()
	if err != nil {
		return nil, err
	}
	t.baseline = modes

	return t, nil
}

// Interactive reports whether this Terminal took terminal ownership.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

// Fd returns the controlling terminal's file descriptor in the shell
// process, for use in a child's SysProcAttr.Ctty (which, for Foreground,
// must name a descriptor open in the parent, not the child).
func (t *Terminal) Fd() int {
	return t.fd
}

// ShellPgid returns the shell's own process group id.
func (t *Terminal) ShellPgid() int {
	return t.shellPgid
}

func isTTY(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	return err == nil
}

// PutInForeground transfers terminal ownership to pgid, tolerating spurious
// EINTR.
func (t *Terminal) PutInForeground(pgid int) error {
	if !t.interactive {
		return nil
	}
	return retryEINTR(func() error {
		return unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid)
	})
}

// Foreground returns the pgid currently owning the controlling terminal.
func (t *Terminal) Foreground() (int, error) {
	return unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
}

// Save captures the current termios state.
func (t *Terminal) Save() (Modes, error) {
	term, err := unix.IoctlGetTermios(t.fd, ioctlGetTermios)
	if err != nil {
		return Modes{}, err
	}
	return Modes{termios: *term}, nil
}

// Restore applies a previously saved termios state, retrying on EINTR.
func (t *Terminal) Restore(m Modes) error {
	if !t.interactive {
		return nil
	}
	termios := m.termios
	return retryEINTR(func() error {
		return unix.IoctlSetTermios(t.fd, ioctlSetTermios, &termios)
	})
}

// RestoreBaseline restores the shell's own baseline termios, called on
// every return to the shell after a foreground job.
func (t *Terminal) RestoreBaseline() error {
	return t.Restore(t.baseline)
}

func retryEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}
