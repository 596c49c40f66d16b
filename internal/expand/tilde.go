package expand

import (
	"os"
	"os/user"
	"strings"
)

// expandTilde is Pass 1. Only a leading, literal '~' is subject to
// expansion; an unresolvable prefix passes the argument through unchanged.
func expandTilde(text string, mask Mask, homeDir string) (string, Mask) {
	if len(text) == 0 || text[0] != '~' || mask[0] != '1' {
		return text, mask
	}

	prefix, suffix := text, ""
	if end := strings.IndexByte(text, '/'); end >= 0 {
		prefix, suffix = text[:end], text[end:]
	}

	var resolved string
	var ok bool
	switch prefix {
	case "~":
		if homeDir != "" {
			resolved, ok = homeDir, true
		} else {
			resolved, ok = lookupHomeDir("")
		}
	case "~+":
		resolved, ok = os.LookupEnv("PWD")
	case "~-":
		resolved, ok = os.LookupEnv("OLDPWD")
	default:
		resolved, ok = lookupHomeDir(prefix[1:])
	}

	if !ok {
		return text, mask
	}

	newText := resolved + suffix
	newMask := append(NewMask(len(resolved), '0'), mask[len(prefix):]...)
	return newText, newMask
}

func lookupHomeDir(name string) (string, bool) {
	var u *user.User
	var err error
	if name == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(name)
	}
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
