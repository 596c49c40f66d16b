// Package shell wires every subsystem together behind one context struct,
// the idiomatic replacement for a pile of process-wide globals: the job
// table, terminal adapter, variable/alias stores, execution engine,
// built-ins dispatcher, and signal core all live as fields here instead of
// package-level state, and the signal core is handed the job table it needs
// when it is installed instead of reaching it through a global.
package shell

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xdsh-project/xdsh/internal/builtins"
	"github.com/xdsh-project/xdsh/internal/config"
	"github.com/xdsh-project/xdsh/internal/engine"
	"github.com/xdsh-project/xdsh/internal/jobtable"
	"github.com/xdsh-project/xdsh/internal/parser"
	"github.com/xdsh-project/xdsh/internal/pathsearch"
	"github.com/xdsh-project/xdsh/internal/signals"
	"github.com/xdsh-project/xdsh/internal/tasks"
	"github.com/xdsh-project/xdsh/internal/terminal"
	"github.com/xdsh-project/xdsh/internal/vars"
)

// Shell is the process-wide context every subsystem is built against.
type Shell struct {
	Config *config.ShellConfig
	Log    *logrus.Entry

	Term    *terminal.Terminal
	Table   *jobtable.Table
	Vars    *vars.Variables
	Aliases *vars.Aliases
	Tasks   *tasks.TaskManager

	Builtins *builtins.Dispatcher
	Engine   *engine.Engine
	Signals  *signals.Core

	Interactive bool

	// LastExitCode/LastBgPid back $?/$! (ParamContext special parameters).
	LastExitCode int
	LastBgPid    int
}

// New builds a Shell and wires every subsystem together. selfExe is the
// absolute path to this binary, used for $SHELL and the built-ins re-exec
// path (internal/engine.ReexecFlag).
func New(cfg *config.ShellConfig, log *logrus.Entry, interactive bool, selfExe string) (*Shell, error) {
	term, err := terminal.Open(interactive)
	if err != nil {
		return nil, err
	}

	table := jobtable.New()
	variables := vars.NewVariables()
	aliases := vars.NewAliases()
	taskManager := tasks.NewTaskManager()

	// The request for interactivity only sticks when stdin and stdout are
	// real ttys; the engine and signal core follow what the terminal
	// adapter actually detected.
	bd := builtins.New(table, term, variables, aliases, taskManager, log)
	eng := engine.New(table, term, variables, bd, log, term.Interactive(), selfExe)
	sig := signals.Install(table, log, term.Interactive())

	s := &Shell{
		Config:      cfg,
		Log:         log,
		Term:        term,
		Table:       table,
		Vars:        variables,
		Aliases:     aliases,
		Tasks:       taskManager,
		Builtins:    bd,
		Engine:      eng,
		Signals:     sig,
		Interactive: interactive,
	}

	s.initEnvironment(selfExe)
	return s, nil
}

// Close unregisters the Shell's signal handlers. Called once on exit.
func (s *Shell) Close() {
	s.Signals.Stop()
}

// initEnvironment populates the exported portion of the variable store
// from the inherited environment, and sets or defaults
// HOME/USER/LOGNAME/PATH/SHLVL/SHELL/HISTFILE.
func (s *Shell) initEnvironment(selfExe string) {
	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		name, value := kv[:eq], kv[eq+1:]
		if !vars.ValidName(name) {
			continue
		}
		_ = s.Vars.Put(name, value, true)
	}

	if _, ok := s.Vars.Get("HOME"); !ok {
		_ = s.Vars.Put("HOME", s.Config.HomeDir, true)
	}
	if _, ok := s.Vars.Get("USER"); !ok {
		if name := currentUserName(); name != "" {
			_ = s.Vars.Put("USER", name, true)
		}
	}
	if _, ok := s.Vars.Get("LOGNAME"); !ok {
		if name := currentUserName(); name != "" {
			_ = s.Vars.Put("LOGNAME", name, true)
		}
	}
	if _, ok := s.Vars.Get("PATH"); !ok {
		fallback := pathsearch.FallbackPath
		if s.Config.Options != nil && s.Config.Options.FallbackPath != "" {
			fallback = s.Config.Options.FallbackPath
		}
		_ = s.Vars.Put("PATH", fallback, true)
	}

	shlvl := 0
	if v, ok := s.Vars.Get("SHLVL"); ok {
		shlvl, _ = strconv.Atoi(v)
	}
	_ = s.Vars.Put("SHLVL", strconv.Itoa(shlvl+1), true)

	_ = s.Vars.Put("SHELL", selfExe, true)
	if _, ok := s.Vars.Get("HISTFILE"); !ok {
		_ = s.Vars.Put("HISTFILE", s.Config.HistFile(), true)
	}
}

func currentUserName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return os.Getenv("LOGNAME")
}

// RunCommandSubstitution implements expand.Substituter: the
// captured command text is re-parsed and re-expanded through this same
// Shell's pipeline, then executed with its stdout captured instead of
// inherited. Every Command inside it is forked independently by
// internal/engine exactly like a top-level pipeline, including the
// built-ins re-exec path, so no separate subshell machinery is needed here.
func (s *Shell) RunCommandSubstitution(cmdText string) (string, int, error) {
	pj, err := parser.Parse(cmdText)
	if err != nil {
		return "", 1, err
	}
	j, err := parser.Build(pj, s.expandArgv, s.expandOne)
	if err != nil {
		return "", 1, err
	}
	output, code, err := s.Engine.ExecuteCaptured(j)
	if err != nil {
		return "", code, err
	}
	return output, code, nil
}

// ExecuteLine runs one line of input end to end: alias expansion, parsing,
// argument expansion, and execution. Parse errors are reported to stderr and
// set the last exit code to 2; expansion errors are reported to stderr
// referencing the original line and set the last exit code to 1.
func (s *Shell) ExecuteLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	expanded := s.expandAlias(line)

	pj, err := parser.Parse(expanded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xdsh: %v\n", err)
		s.LastExitCode = 2
		return
	}

	j, err := parser.Build(pj, s.expandArgv, s.expandOne)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xdsh: %s: %v\n", strings.TrimSpace(line), err)
		s.LastExitCode = 1
		return
	}

	s.LastExitCode = s.Engine.Execute(j)
	if j.Background && len(j.Commands) > 0 {
		s.LastBgPid = j.Commands[0].Pid
	}
}
