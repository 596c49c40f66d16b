package terminal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenNonInteractiveWhenNotRequested(t *testing.T) {
	term, err := Open(false)
	assert.NoError(t, err)
	assert.False(t, term.Interactive())
}

func TestOpenNonInteractiveOverPipe(t *testing.T) {
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.False(t, isTTY(int(r.Fd())))
}

func TestPutInForegroundNoOpWhenNotInteractive(t *testing.T) {
	term, err := Open(false)
	assert.NoError(t, err)
	assert.NoError(t, term.PutInForeground(os.Getpid()))
}

func TestRestoreNoOpWhenNotInteractive(t *testing.T) {
	term, err := Open(false)
	assert.NoError(t, err)
	assert.NoError(t, term.Restore(Modes{}))
	assert.NoError(t, term.RestoreBaseline())
}
