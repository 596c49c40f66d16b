package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/jobtable"
)

// ResolveJobspec resolves a textual jobspec ("%%", "%+", "%-", "%n", or the
// empty string meaning current) against the Job Table.
func ResolveJobspec(table *jobtable.Table, spec string) (*job.Job, error) {
	switch spec {
	case "", "%%", "%+":
		j := table.GetCurrent()
		if j == nil {
			return nil, fmt.Errorf("no current job")
		}
		return j, nil
	case "%-":
		j := table.GetPrevious()
		if j == nil {
			return nil, fmt.Errorf("no previous job")
		}
		return j, nil
	default:
		if !strings.HasPrefix(spec, "%") {
			return nil, fmt.Errorf("%s: no such job", spec)
		}
		id, err := strconv.Atoi(spec[1:])
		if err != nil {
			return nil, fmt.Errorf("%s: no such job", spec)
		}
		j := table.GetWithID(id)
		if j == nil {
			return nil, fmt.Errorf("%s: no such job", spec)
		}
		return j, nil
	}
}

// pipelineText renders a job's commands as "cmd1 | cmd2" for fg/bg's
// resumed-command echo.
func pipelineText(j *job.Job) string {
	parts := make([]string, len(j.Commands))
	for i, cmd := range j.Commands {
		parts[i] = cmd.SourceText
	}
	return strings.Join(parts, " | ")
}
