// Package shellerr provides the shell's two error shapes: stack-carrying
// wraps for syscall/setup failures (so a bug report has a trace), and coded
// errors for conditions the expander and execution engine need to
// distinguish programmatically without matching on message text.
package shellerr

import (
	"fmt"

	"github.com/go-errors/errors"
	"golang.org/x/xerrors"
)

// Wrap wraps err for the sake of a stack trace at the top level, returning
// nil for a nil input: go-errors does not return nil for a nil input on its
// own.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}

// Code identifies the category of a CodedError.
type Code int

const (
	// CodeBadSubstitution marks a malformed ${...} body.
	CodeBadSubstitution Code = iota
	// CodeGlobError marks a real glob failure, not a "no match" (Pass 5).
	CodeGlobError
	// CodeCommandSubstitution marks a command-substitution plumbing failure (Pass 3).
	CodeCommandSubstitution
)

// CodedError carries a Code alongside a message, in the shape of a
// well-known xerrors write-up on self-describing coded errors, so callers
// can branch on Code instead of string-matching.
type CodedError struct {
	Message string
	Code    Code
	Arg     string
	frame   xerrors.Frame
}

func NewCodedError(code Code, arg string, format string, args ...interface{}) CodedError {
	return CodedError{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Arg:     arg,
		frame:   xerrors.Caller(1),
	}
}

func (ce CodedError) FormatError(p xerrors.Printer) error {
	p.Printf("%s", ce.Message)
	ce.frame.Format(p)
	return nil
}

func (ce CodedError) Format(f fmt.State, c rune) {
	xerrors.FormatError(ce, f, c)
}

func (ce CodedError) Error() string {
	return fmt.Sprint(ce)
}

// HasCode reports whether err is a CodedError (or wraps one) with the given code.
func HasCode(err error, code Code) bool {
	var coded CodedError
	if xerrors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}
