package engine

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/utils"
)

// stage is the resolved stdio wiring for one pipeline position: which
// *os.File becomes the child's stdin/stdout/stderr, which of those the
// parent must close once the child has them (or once a synthetic exit made
// clear no child will), and the pipe read end (if any) to carry into the
// next iteration as its stdin.
type stage struct {
	stdin, stdout, stderr *os.File
	closers               []*os.File
	nextRead              *os.File
}

// resolveStage resolves one Command's stdio wiring: input/output/error
// sources, opening redirection targets with an EINTR retry loop and mode
// 0664 for created output files.
func (e *Engine) resolveStage(cmd *command.Command, i, n int, prevRead, captureOut *os.File) (st *stage, err error) {
	st = &stage{}
	defer func() {
		if err != nil {
			_ = utils.CloseMany(toClosers(st.closers))
		}
	}()

	switch {
	case cmd.InputFile != "":
		f, oerr := openInput(cmd.InputFile)
		if oerr != nil {
			return st, oerr
		}
		st.stdin = f
		st.closers = append(st.closers, f)
		// The predecessor's read end is superseded by the file; drop the
		// parent's copy so the upstream writer sees EOF.
		if prevRead != nil {
			st.closers = append(st.closers, prevRead)
		}
	case i == 0:
		st.stdin = os.Stdin
	default:
		st.stdin = prevRead
		st.closers = append(st.closers, prevRead)
	}

	switch {
	case cmd.OutputFile != nil:
		f, oerr := openOutput(cmd.OutputFile.Path, cmd.OutputFile.Append)
		if oerr != nil {
			return st, oerr
		}
		st.stdout = f
		st.closers = append(st.closers, f)
	case i < n-1:
		r, w, perr := openPipe()
		if perr != nil {
			return st, perr
		}
		st.stdout = w
		st.nextRead = r
		st.closers = append(st.closers, w)
	case captureOut != nil:
		st.stdout = captureOut
		st.closers = append(st.closers, captureOut)
	default:
		st.stdout = os.Stdout
	}

	switch {
	case cmd.ErrToOut:
		st.stderr = st.stdout
	case cmd.ErrorFile != nil:
		f, oerr := openOutput(cmd.ErrorFile.Path, cmd.ErrorFile.Append)
		if oerr != nil {
			return st, oerr
		}
		st.stderr = f
		st.closers = append(st.closers, f)
	default:
		st.stderr = os.Stderr
	}

	return st, nil
}

// close drops the parent's copies of every fd this stage opened (the
// ones the child now owns, or that nobody will own after a synthetic
// exit), but not nextRead, which survives into the next stage.
func (st *stage) close() {
	_ = utils.CloseMany(toClosers(st.closers))
}

func toClosers(files []*os.File) []io.Closer {
	out := make([]io.Closer, len(files))
	for i, f := range files {
		out[i] = closer{f}
	}
	return out
}

// closer adapts *os.File to io.Closer while tolerating nil and the shared
// stdin/stdout/stderr streams, which must never be closed.
type closer struct{ f *os.File }

func (c closer) Close() error {
	if c.f == nil || c.f == os.Stdin || c.f == os.Stdout || c.f == os.Stderr {
		return nil
	}
	return c.f.Close()
}

func openInput(path string) (*os.File, error) {
	return retryOpen(func() (*os.File, error) {
		return os.OpenFile(path, os.O_RDONLY, 0)
	})
}

func openOutput(path string, append bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return retryOpen(func() (*os.File, error) {
		return os.OpenFile(path, flags, 0o664)
	})
}

func openPipe() (*os.File, *os.File, error) {
	for {
		r, w, err := os.Pipe()
		if err == syscall.EINTR {
			continue
		}
		return r, w, err
	}
}

func retryOpen(open func() (*os.File, error)) (*os.File, error) {
	for {
		f, err := open()
		if err == syscall.EINTR {
			continue
		}
		return f, err
	}
}

// exitedStatus encodes a raw wait status meaning "exited normally with
// code", for the rare case the Execution Engine must synthesize a
// Command's outcome itself (the conventional exec-failure codes, produced by
// the parent since Go's failed-exec path leaves no child to report its
// own).
func exitedStatus(code int) int {
	return (code & 0xff) << 8
}

func nowNano() int64 {
	return time.Now().UnixNano()
}
