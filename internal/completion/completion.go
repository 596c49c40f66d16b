// Package completion provides the four completion generators the external
// line editor calls into (tilde-user, tilde-path, $var, and ${var}), each a
// small, independent function over a partial word. The two tilde forms keep
// distinct candidate sets: a bare ~prefix completes account names, and
// ~name/prefix completes entries under that account's home directory.
package completion

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/xdsh-project/xdsh/internal/vars"
)

// CompleteTildeUser returns every account name beginning with prefix,
// sorted, for completing a bare "~prefix" word into "~name". prefix never
// includes the leading '~'.
func CompleteTildeUser(prefix string) []string {
	names := systemUserNames()
	matches := lo.Filter(names, func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
	sort.Strings(matches)
	return lo.Map(matches, func(name string, _ int) string { return "~" + name })
}

// CompleteTildePath resolves "~name/partial" (or "~/partial", "~+/partial",
// "~-/partial") to directory entries under that account's home directory,
// for completing the path segment after the slash. rest is the portion
// after the slash (possibly empty); the returned candidates are full
// "~name/entry" style words. The tilde-user form lists accounts, the
// tilde-path form lists directory entries, never a blend of both.
func CompleteTildePath(tildePrefix, rest string, home func(name string) (string, bool)) []string {
	base, ok := home(tildePrefix)
	if !ok {
		return nil
	}

	dir, partial := filepath.Split(rest)
	searchDir := filepath.Join(base, dir)

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), partial) {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		// Plain concatenation: filepath.Join would strip the trailing slash
		// that marks a directory candidate.
		out = append(out, "~"+tildePrefix+"/"+dir+name)
	}
	sort.Strings(out)
	return out
}

// CompleteVar returns every variable name beginning with prefix, prefixed
// with "$", for completing a bare "$prefix" word for a variable reference.
func CompleteVar(prefix string, variables *vars.Variables) []string {
	names := lo.Filter(variables.Names(), func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
	return lo.Map(names, func(name string, _ int) string { return "$" + name })
}

// CompleteVarBrace returns every variable name beginning with prefix,
// rendered as "${name}", for completing a "${prefix" word before its
// closing brace for a braced variable reference.
func CompleteVarBrace(prefix string, variables *vars.Variables) []string {
	names := lo.Filter(variables.Names(), func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
	return lo.Map(names, func(name string, _ int) string { return "${" + name + "}" })
}

// systemUserNames reads /etc/passwd for account names; Go's os/user
// package exposes lookup-by-name/uid but no "list every account" call, so
// the passwd file is read directly here, same as libc's getpwent would.
func systemUserNames() []string {
	f, err := os.Open("/etc/passwd")
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ":", 2)
		if len(fields) > 0 && fields[0] != "" {
			names = append(names, fields[0])
		}
	}
	return names
}
