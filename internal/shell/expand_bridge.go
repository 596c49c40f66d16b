package shell

import (
	"os"
	"strings"

	"github.com/xdsh-project/xdsh/internal/expand"
)

// expandContext builds the expand.Context for the current shell state; a
// fresh one is built per line/substitution since LastExitCode/LastBgPid
// change between calls.
func (s *Shell) expandContext() expand.Context {
	return expand.Context{
		Vars: expand.ParamContext{
			Get:       s.Vars.Get,
			ShellPid:  os.Getpid(),
			LastExit:  s.LastExitCode,
			LastBgPid: s.LastBgPid,
		},
		HomeDir:     s.Config.HomeDir,
		Substituter: s,
		SetLastExit: func(code int) { s.LastExitCode = code },
	}
}

// expandArgv is bound into parser.Build as its argv-expansion hook.
func (s *Shell) expandArgv(words []string) ([]string, error) {
	return expand.ExpandArgv(words, s.expandContext())
}

// expandOne is bound into parser.Build as its redirection-target expansion
// hook. A redirection target collapses to a single word: the result words
// are joined back with spaces rather than treated as several targets, since
// "> $f" naming more than one file is not a case the engine's redirection
// model supports.
func (s *Shell) expandOne(raw string) (string, error) {
	words, err := expand.Expand(raw, s.expandContext())
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}
