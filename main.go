package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/integrii/flaggy"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/xdsh-project/xdsh/internal/builtins"
	"github.com/xdsh-project/xdsh/internal/config"
	"github.com/xdsh-project/xdsh/internal/engine"
	"github.com/xdsh-project/xdsh/internal/jobtable"
	"github.com/xdsh-project/xdsh/internal/shell"
	"github.com/xdsh-project/xdsh/internal/tasks"
	"github.com/xdsh-project/xdsh/internal/terminal"
	"github.com/xdsh-project/xdsh/internal/vars"
	"github.com/xdsh-project/xdsh/internal/xlog"
)

const defaultVersion = "unversioned"

var (
	commit  string
	version = defaultVersion
	date    string

	loginFlag   = false
	debugFlag   = false
	commandFlag = ""
	scriptFlag  = ""
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == engine.ReexecFlag {
		os.Exit(runReexecedBuiltin(os.Args[2:]))
	}

	updateBuildInfo()

	info := fmt.Sprintf(
		"%s\nDate: %s\nCommit: %s\nOS: %s\nArch: %s",
		version, date, commit, runtime.GOOS, runtime.GOARCH,
	)

	flaggy.SetName("xdsh")
	flaggy.SetDescription("A job-control shell")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/xdsh-project/xdsh"

	flaggy.Bool(&loginFlag, "l", "login", "Run as a login shell, sourcing the profile file")
	flaggy.Bool(&debugFlag, "d", "debug", "Log to the debug log file instead of discarding")
	flaggy.String(&commandFlag, "c", "command", "Execute the given command string and exit")
	flaggy.String(&scriptFlag, "f", "file", "Execute the given script file and exit")
	flaggy.SetVersion(info)

	flaggy.Parse()

	if commandFlag != "" && scriptFlag != "" {
		log.Fatal("xdsh: -c and -f are mutually exclusive")
	}

	selfExe, err := os.Executable()
	if err != nil {
		log.Fatal(err.Error())
	}

	cfg, err := config.Load(version, loginFlag, debugFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	logEntry := xlog.New(cfg.ConfigDir, version, debugFlag)

	interactive := commandFlag == "" && scriptFlag == ""

	sh, err := shell.New(cfg, logEntry, interactive, selfExe)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer sh.Close()

	if cfg.Login {
		sh.SourceFile(cfg.ProfilePath())
	} else if interactive {
		sh.SourceFile(cfg.RCPath())
	}

	switch {
	case commandFlag != "":
		os.Exit(sh.RunString(commandFlag))
	case scriptFlag != "":
		os.Exit(sh.RunFile(scriptFlag))
	default:
		os.Exit(sh.Run())
	}
}

// runReexecedBuiltin implements the child side of internal/engine's
// ReexecFlag trick: a built-in that needed its own pid (a slot in a
// pipeline, or a backgrounded invocation) runs here, in a freshly started
// process with no access to the parent's Job Table or variables - the same
// limitation a real shell's job-control builtins have when invoked as a
// pipeline stage of themselves rather than the process that owns the table.
func runReexecedBuiltin(argv []string) int {
	if len(argv) == 0 {
		return 2
	}

	log := logrus.New()
	log.Out = io.Discard

	d := builtins.New(
		jobtable.New(),
		mustClosedTerminal(),
		vars.NewVariables(),
		vars.NewAliases(),
		tasks.NewTaskManager(),
		log.WithField("reexec", true),
	)

	return d.Run(argv[0], argv, os.Stdin, os.Stdout, os.Stderr)
}

// mustClosedTerminal returns a non-interactive Terminal adapter; a
// reexec'd built-in never owns the controlling terminal itself.
func mustClosedTerminal() *terminal.Terminal {
	term, err := terminal.Open(false)
	if err != nil {
		log.Fatal(err.Error())
	}
	return term
}

func updateBuildInfo() {
	if version == defaultVersion {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			revision, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.revision"
			})
			if ok {
				commit = revision.Value
				if len(commit) > 7 {
					version = commit[:7]
				} else {
					version = commit
				}
			}

			t, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.time"
			})
			if ok {
				date = t.Value
			}
		}
	}
}
