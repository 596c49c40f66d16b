package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/xdsh-project/xdsh/internal/utils"
)

// RunString implements the `-c STRING` invocation form: the
// argument is executed as a single line, with no prompt and no rc/profile
// sourcing beyond what main.go already arranged.
func (s *Shell) RunString(command string) int {
	s.ExecuteLine(command)
	return s.LastExitCode
}

// RunFile implements the `-f FILE` invocation form: each line is executed in
// turn, stopping at the first I/O error reading the file (not at the first
// failing command, matching a plain script run rather than `set -e`).
func (s *Shell) RunFile(path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xdsh: %s: %v\n", path, err)
		return 127
	}
	defer f.Close()

	s.runLines(f)
	return s.LastExitCode
}

// SourceFile executes path line by line if it exists, silently doing
// nothing if it doesn't (used for the profile/rc files, which are optional).
func (s *Shell) SourceFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	s.runLines(f)
}

func (s *Shell) runLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1<<20)
	for scanner.Scan() {
		// Prune finished jobs between lines, silently: scripts don't get
		// job-change notifications, only the interactive loop does.
		s.Table.Refresh(nil)
		s.ExecuteLine(scanner.Text())
	}
}

// Run drives the interactive read-eval loop. The full line editor lives
// outside this package; this reads whole lines from stdin, the simplest
// substitute. Before every prompt it refreshes the Job Table so
// completed background jobs are reported, and clears a pending SIGINT so a
// Ctrl-C during a blank prompt does not carry over into the next line.
func (s *Shell) Run() int {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for {
		s.Table.Refresh(s.notifyJobChange)
		s.Signals.ClearInterrupted()

		fmt.Fprint(os.Stderr, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(os.Stderr)
			break
		}

		if s.Signals.Interrupted() {
			s.Signals.ClearInterrupted()
			continue
		}

		s.ExecuteLine(scanner.Text())
	}

	return s.LastExitCode
}

func (s *Shell) notifyJobChange(line string) {
	fmt.Fprintln(os.Stderr, line)
}

var promptColors = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

func (s *Shell) prompt() string {
	text := s.Config.Name + "$ "
	if s.Config.Options == nil {
		return text
	}
	if attr, ok := promptColors[s.Config.Options.PromptColor]; ok {
		return utils.ColoredString(text, attr)
	}
	return text
}
