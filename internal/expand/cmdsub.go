package expand

import (
	"strings"

	"github.com/xdsh-project/xdsh/internal/shellerr"
)

// Substituter runs a command substitution's captured text as a full command
// line and returns its captured stdout and exit code. internal/shell
// supplies the concrete implementation: it re-drives the parser and runs the
// result through the execution engine, which this package does not know about.
type Substituter interface {
	RunCommandSubstitution(cmd string) (output string, exitCode int, err error)
}

// expandCommandSubstitutions is Pass 3: $(cmd) syntax only. The matching
// ')' is located accounting for nested parens, quotes, and nested
// substitutions; the captured text is handed to sub verbatim, its output's
// trailing newlines only are trimmed, and the result is substituted with an
// all-'0' mask. The child's exit status becomes the new last exit code.
func expandCommandSubstitutions(text string, mask Mask, sub Substituter, setLastExit func(int)) (string, Mask, error) {
	sc := NewScanner()
	var outText strings.Builder
	var outMask Mask

	i := 0
	for i < len(text) {
		isOpen := sc.Top() != SingleQuoted && mask[i] == '1' && text[i] == '$' && hasNext(text, mask, i, '(')
		if isOpen {
			closeIdx, ok := matchCmdSub(text, mask, i)
			if !ok {
				return "", nil, shellerr.NewCodedError(shellerr.CodeCommandSubstitution, text[i:], "unterminated command substitution")
			}
			cmdText := text[i+2 : closeIdx]
			output, exitCode, err := sub.RunCommandSubstitution(cmdText)
			if err != nil {
				return "", nil, shellerr.NewCodedError(shellerr.CodeCommandSubstitution, cmdText, "command substitution failed: %v", err)
			}
			if setLastExit != nil {
				setLastExit(exitCode)
			}
			output = strings.TrimRight(output, "\n")
			outText.WriteString(output)
			outMask = append(outMask, NewMask(len(output), '0')...)
			i = closeIdx + 1
			continue
		}

		sc.Advance(text, mask, i)
		outText.WriteByte(text[i])
		outMask = append(outMask, mask[i])
		i++
	}
	return outText.String(), outMask, nil
}

// matchCmdSub returns the index of the ')' matching the "$(" at dollarIdx,
// tracking nested parens and quotes (escape skips exactly one character).
func matchCmdSub(text string, mask Mask, dollarIdx int) (int, bool) {
	depth := 1
	var quote byte

	i := dollarIdx + 2
	for i < len(text) {
		if mask[i] != '1' {
			i++
			continue
		}
		b := text[i]

		if quote == '\'' {
			if b == '\'' {
				quote = 0
			}
			i++
			continue
		}

		switch b {
		case '\\':
			if quote != '"' {
				i += 2
				continue
			}
		case '\'':
			if quote == 0 {
				quote = '\''
			}
		case '"':
			if quote == '"' {
				quote = 0
			} else if quote == 0 {
				quote = '"'
			}
		case '(':
			if quote == 0 {
				depth++
			}
		case ')':
			if quote == 0 {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
		i++
	}
	return 0, false
}
