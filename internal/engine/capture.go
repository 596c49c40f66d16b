package engine

import (
	"bytes"
	"io"
	"os"

	"github.com/xdsh-project/xdsh/internal/job"
)

// ExecuteCaptured runs j synchronously with its last command's stdout piped
// into a buffer instead of inherited, backing command substitution: the
// shell forks the substituted command and reads all of its stdout back,
// raw - trimming trailing newlines is the substitution pass's job, not
// this method's. It always waits synchronously, ignoring j.Background - a
// `$(cmd &)` still has to finish before its output can be substituted into
// the enclosing command line. Explicit output redirection inside the
// substituted command (rare, but legal: `$(cmd > file)`) wins over capture,
// matching a real subshell.
func (e *Engine) ExecuteCaptured(j *job.Job) (output string, exitCode int, err error) {
	if len(j.Commands) == 0 {
		return "", 0, nil
	}

	last := j.Commands[len(j.Commands)-1]
	if last.OutputFile != nil {
		return "", e.Execute(job.New(j.Commands, false)), nil
	}

	r, w, perr := os.Pipe()
	if perr != nil {
		return "", 1, perr
	}

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	if err := e.launch(j, true, w); err != nil {
		w.Close()
		r.Close()
		e.cleanupFailure(j, err)
		return "", 1, err
	}

	code := e.wait(j)
	<-done
	r.Close()

	return buf.String(), code, nil
}
