// Package pathsearch resolves a bare command name against
// $PATH the way the shell does it, independent of the Go runtime's own
// exec.LookPath (which has different empty-segment and executable-bit
// rules than a POSIX shell).
package pathsearch

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// FallbackPath is used to populate $PATH when the inherited environment
// doesn't define one.
const FallbackPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// Find resolves name against the process's $PATH (or FallbackPath if
// unset). The execution engine uses FindIn with the shell's own PATH
// variable instead, which may diverge from the process environment.
func Find(name string) (string, bool) {
	pathVar, set := os.LookupEnv("PATH")
	if !set {
		pathVar = FallbackPath
	}
	return FindIn(name, pathVar)
}

// FindIn resolves name against an explicit colon-separated path list,
// returning the first segment/name that is both executable and a regular
// file. Empty segments mean the current directory. If name contains a '/',
// FindIn returns ("", false): the caller uses the literal path unchanged.
func FindIn(name, pathVar string) (string, bool) {
	if strings.Contains(name, "/") {
		return "", false
	}

	for _, segment := range strings.Split(pathVar, ":") {
		if segment == "" {
			segment = "."
		}
		candidate := segment + "/" + name
		if executableRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func executableRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
