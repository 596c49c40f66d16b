// Package utils collects small string and slice helpers shared across the
// shell's subsystems: no single package owns these concerns, so they live
// in one place rather than being duplicated per caller.
package utils

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// WithPadding pads a string with spaces until it reaches the given display
// width, ignoring ANSI color escapes when measuring. Used by the Job Table
// to left-pad the STATUS_FIELD column to 42 characters.
func WithPadding(str string, padding int) string {
	uncoloredStr := Decolorise(str)
	if padding < runewidth.StringWidth(uncoloredStr) {
		return str
	}
	return str + strings.Repeat(" ", padding-runewidth.StringWidth(uncoloredStr))
}

// ColoredString colors a string with the given attribute.
func ColoredString(str string, colorAttribute color.Attribute) string {
	if colorAttribute == color.FgWhite {
		return str
	}
	colour := color.New(colorAttribute)
	return colour.SprintFunc()(str)
}

// Decolorise strips ANSI color escapes from a string.
func Decolorise(str string) string {
	re := regexp.MustCompile(`\x1B\[([0-9]{1,2}(;[0-9]{1,2})?)?[mK]`)
	return re.ReplaceAllString(str, "")
}

// Max returns the maximum of two integers.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// Min returns the minimum of two integers.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

type multiErr []error

func (m multiErr) Error() string {
	var b strings.Builder
	b.WriteString("encountered multiple errors:")
	for _, err := range m {
		fmt.Fprintf(&b, "\n\t... %s", err.Error())
	}
	return b.String()
}

// CloseMany closes every closer, collecting and joining any errors.
func CloseMany(closers []io.Closer) error {
	errs := make([]error, 0, len(closers))
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return multiErr(errs)
	}
	return nil
}
