package expand

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xdsh-project/xdsh/internal/shellerr"
)

var paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
var validParamNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParamContext supplies the values substituted by Pass 2.
type ParamContext struct {
	// Get looks up a shell variable by name.
	Get func(name string) (string, bool)
	// ShellPid is substituted for $$/${$}.
	ShellPid int
	// LastExit is substituted for $?/${?}.
	LastExit int
	// LastBgPid is substituted for $!/${!}; 0 means "none yet" and yields
	// an empty string.
	LastBgPid int
}

// expandParameters is Pass 2: $name and ${name} (plus the $$/$?/$! special
// parameters), active only at mask-'1' '$' characters outside single quotes.
func expandParameters(text string, mask Mask, ctx ParamContext) (string, Mask, error) {
	sc := NewScanner()
	var outText strings.Builder
	var outMask Mask

	i := 0
	for i < len(text) {
		// A parameter reference is resolved before the scanner ever sees
		// it, so "${" and "$(" are never mistaken for brace/paren nesting
		// here. Inside an as-yet-unexpanded command substitution, any
		// variable reference belongs to that subshell, not this pass.
		if mask[i] == '1' && text[i] == '$' && !sc.Within(SingleQuoted) && !sc.Within(CmdParen) {
			consumed, sub, subMask, err := expandOneParameter(text[i:], ctx)
			if err != nil {
				return "", nil, err
			}
			if consumed > 0 {
				outText.WriteString(sub)
				outMask = append(outMask, subMask...)
				i += consumed
				continue
			}
		}

		sc.Advance(text, mask, i)
		outText.WriteByte(text[i])
		outMask = append(outMask, mask[i])
		i++
	}
	return outText.String(), outMask, nil
}

// expandOneParameter expands the parameter reference starting at rest[0]
// ('$'), returning how many bytes of rest it consumed. consumed == 0 means
// "not a parameter reference" (the '$' is left for the caller to copy
// literally, e.g. "$(" which Pass 3 owns, or "$5" which is not a valid name).
func expandOneParameter(rest string, ctx ParamContext) (consumed int, sub string, subMask Mask, err error) {
	if len(rest) < 2 {
		return 0, "", nil, nil
	}

	switch rest[1] {
	case '{':
		return expandBraceParameter(rest, ctx)
	case '$':
		v := strconv.Itoa(ctx.ShellPid)
		return 2, v, NewMask(len(v), '0'), nil
	case '?':
		v := strconv.Itoa(ctx.LastExit)
		return 2, v, NewMask(len(v), '0'), nil
	case '!':
		v := bgPidString(ctx.LastBgPid)
		return 2, v, NewMask(len(v), '0'), nil
	default:
		name := paramNameRe.FindString(rest[1:])
		if name == "" {
			return 0, "", nil, nil
		}
		value, _ := ctx.Get(name)
		return 1 + len(name), value, NewMask(len(value), '0'), nil
	}
}

func expandBraceParameter(rest string, ctx ParamContext) (int, string, Mask, error) {
	closeOffset := strings.IndexByte(rest[2:], '}')
	if closeOffset < 0 {
		return 0, "", nil, shellerr.NewCodedError(shellerr.CodeBadSubstitution, rest, "bad substitution")
	}
	body := rest[2 : 2+closeOffset]
	consumed := 2 + closeOffset + 1

	switch body {
	case "$":
		v := strconv.Itoa(ctx.ShellPid)
		return consumed, v, NewMask(len(v), '0'), nil
	case "?":
		v := strconv.Itoa(ctx.LastExit)
		return consumed, v, NewMask(len(v), '0'), nil
	case "!":
		v := bgPidString(ctx.LastBgPid)
		return consumed, v, NewMask(len(v), '0'), nil
	default:
		if !validParamNameRe.MatchString(body) {
			return 0, "", nil, shellerr.NewCodedError(shellerr.CodeBadSubstitution, rest[:consumed], "bad substitution")
		}
		value, _ := ctx.Get(body)
		return consumed, value, NewMask(len(value), '0'), nil
	}
}

func bgPidString(pid int) string {
	if pid == 0 {
		return ""
	}
	return strconv.Itoa(pid)
}
