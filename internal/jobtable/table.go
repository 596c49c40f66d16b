// Package jobtable is the process-wide registry of live jobs.
package jobtable

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/sasha-s/go-deadlock"

	"github.com/xdsh-project/xdsh/internal/command"
	"github.com/xdsh-project/xdsh/internal/job"
	"github.com/xdsh-project/xdsh/internal/utils"
)

// statusColumnWidth is the left-pad width for STATUS_FIELD in the
// shell-pipeline status line.
const statusColumnWidth = 42

// Table is the process-wide registry of live jobs. Its mutex is a
// go-deadlock.Mutex rather than sync.Mutex so a lock-order inversion between
// the main flow and the async SIGCHLD reaper is caught in development builds
// instead of deadlocking silently.
type Table struct {
	mu deadlock.Mutex

	jobs     []*job.Job
	current  *job.Job
	previous *job.Job

	blockMu    deadlock.Mutex
	blockDepth int
	unblocked  chan struct{}

	pendingMu deadlock.Mutex
	pending   map[int]int
}

// New returns an empty Job Table.
func New() *Table {
	return &Table{
		unblocked: make(chan struct{}, 1),
		pending:   make(map[int]int),
	}
}

// Add assigns the job its job id and inserts it into the table. Any wait
// status the reaper buffered for one of the job's pids before it was added
// (the child raced its own registration) is applied on the way in.
func (t *Table) Add(j *job.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()

	maxID := 0
	for _, existing := range t.jobs {
		if existing.JobID > maxID {
			maxID = existing.JobID
		}
	}
	j.JobID = maxID + 1
	t.jobs = append(t.jobs, j)

	for _, cmd := range j.Commands {
		if cmd.Pid == 0 {
			continue
		}
		if status, ok := t.TakePendingStatus(cmd.Pid); ok {
			t.ApplyObservedStatus(j, cmd, status)
		}
	}
}

// AddPendingStatus buffers a wait status observed for a pid no job in the
// table currently owns, so the status survives until that pid's job is
// either added or waited on directly.
func (t *Table) AddPendingStatus(pid, status int) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	t.pending[pid] = status
}

// TakePendingStatus removes and returns the buffered status for pid, if any.
func (t *Table) TakePendingStatus(pid int) (int, bool) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	status, ok := t.pending[pid]
	if ok {
		delete(t.pending, pid)
	}
	return status, ok
}

// GetWithPid returns the job owning the command with the given pid.
func (t *Table) GetWithPid(pid int) *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		for _, cmd := range j.Commands {
			if cmd.Pid == pid {
				return j
			}
		}
	}
	return nil
}

// GetWithID returns the job with the given job id, or nil.
func (t *Table) GetWithID(id int) *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		if j.JobID == id {
			return j
		}
	}
	return nil
}

// GetCurrent returns the "%%"/"%+" job.
func (t *Table) GetCurrent() *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// GetPrevious returns the "%-" job.
func (t *Table) GetPrevious() *job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous
}

// All returns a snapshot slice of the live jobs, ordered by job id.
func (t *Table) All() []*job.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*job.Job, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Refresh is called once per interactive prompt cycle: emit a status line
// for each job whose Notify flag is set, drop jobs whose
// UnreapedCount reached zero, then recompute current/previous.
//
// emit receives the formatted status line for each notified job; pass nil
// to suppress printing (e.g. non-interactive mode).
func (t *Table) Refresh(emit func(line string)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		if j.Notify {
			if emit != nil {
				emit(t.formatLine(j, false, false))
			}
			j.Notify = false
		}
	}

	t.jobs = lo.Filter(t.jobs, func(j *job.Job, _ int) bool { return j.Alive() })

	t.recomputeCurrentPrevious()
}

// RecomputeCurrentPrevious re-derives the current/previous markers from the
// live jobs without Refresh's notify-clearing and pruning side effects, for
// displays that must not swallow a pending completion report.
func (t *Table) RecomputeCurrentPrevious() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeCurrentPrevious()
}

// recomputeCurrentPrevious picks the newest stopped job as current if one
// exists, else the newest alive job by LastActive/JobID; previous is the
// next newest alive job under the same ordering, distinct from current.
// Caller must hold t.mu.
func (t *Table) recomputeCurrentPrevious() {
	alive := lo.Filter(t.jobs, func(j *job.Job, _ int) bool { return j.Alive() })
	if len(alive) == 0 {
		t.current, t.previous = nil, nil
		return
	}

	byRecency := append([]*job.Job(nil), alive...)
	sortByRecency(byRecency)

	stopped := lo.Filter(byRecency, func(j *job.Job, _ int) bool { return j.Stopped() })
	if len(stopped) > 0 {
		t.current = stopped[0]
	} else {
		t.current = byRecency[0]
	}

	t.previous = nil
	for _, j := range byRecency {
		if j != t.current {
			t.previous = j
			break
		}
	}
}

func sortByRecency(jobs []*job.Job) {
	for i := 1; i < len(jobs); i++ {
		j := i
		for j > 0 && less(jobs[j], jobs[j-1]) {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
			j--
		}
	}
}

// less reports whether a is "more recent" than b: newer LastActive first,
// ties broken by higher job id.
func less(a, b *job.Job) bool {
	if a.LastActive != b.LastActive {
		return a.LastActive > b.LastActive
	}
	return a.JobID > b.JobID
}

// Kill delivers signum to every command's pid individually; broadcasting
// to the whole process group instead is the caller's choice.
func (t *Table) Kill(j *job.Job, signum syscall.Signal) error {
	var firstErr error
	for _, cmd := range j.Commands {
		if cmd.Pid == 0 {
			continue
		}
		if err := syscall.Kill(cmd.Pid, signum); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SigchldBlock/SigchldUnblock implement a nestable block/unblock counter
// for critical sections that must not be interrupted by a job-state change.
// Go's runtime fields all signals on a dedicated OS thread and goroutines
// migrate between threads, so a real process-wide sigprocmask would not
// reliably suppress delivery to "this goroutine" anyway; instead the
// nesting counter here gates whether internal/signals' reaper is allowed to
// apply a drained SIGCHLD batch to the table immediately or must hold it
// until the matching Unblock.
func (t *Table) SigchldBlock() {
	t.blockMu.Lock()
	defer t.blockMu.Unlock()
	t.blockDepth++
}

func (t *Table) SigchldUnblock() {
	t.blockMu.Lock()
	defer t.blockMu.Unlock()
	if t.blockDepth == 0 {
		return
	}
	t.blockDepth--
	if t.blockDepth == 0 {
		select {
		case t.unblocked <- struct{}{}:
		default:
		}
	}
}

// Blocked reports whether the table is currently inside a
// SigchldBlock/SigchldUnblock bracket.
func (t *Table) Blocked() bool {
	t.blockMu.Lock()
	defer t.blockMu.Unlock()
	return t.blockDepth > 0
}

// WaitUnblocked returns the channel the reaper selects on to learn that a
// block/unblock bracket just closed (blockDepth returned to zero).
func (t *Table) WaitUnblocked() <-chan struct{} {
	return t.unblocked
}

// ApplyObservedStatus updates the job/command counters for a freshly
// observed wait status and sets Notify when the job just became not-alive
// or stopped. It is exported so internal/signals' reaper and
// internal/engine's synchronous wait loop share the same counter-update
// logic as job.ApplyStatus.
func (t *Table) ApplyObservedStatus(j *job.Job, cmd *command.Command, status int) {
	wasAlive := j.Alive()
	wasStopped := j.Stopped()
	job.ApplyStatus(j, cmd, status)
	j.LastActive = time.Now().UnixNano()
	if (wasAlive && !j.Alive()) || (!wasStopped && j.Stopped()) {
		j.Notify = true
	}
}

// PrintStatusAll formats every job's state for the `jobs` builtin.
func (t *Table) PrintStatusAll(detailed, pidsOnly bool) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ordered := append([]*job.Job(nil), t.jobs...)
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && ordered[j].JobID < ordered[j-1].JobID {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
			j--
		}
	}

	var b strings.Builder
	for _, j := range ordered {
		if pidsOnly {
			for _, cmd := range j.Commands {
				fmt.Fprintf(&b, "%d\n", cmd.Pid)
			}
			continue
		}
		b.WriteString(t.formatLine(j, detailed, pidsOnly))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Table) mark(j *job.Job) string {
	switch j {
	case t.current:
		return "+"
	case t.previous:
		return "-"
	default:
		return " "
	}
}

// formatLine renders one job's status line:
//
//	[ID]MARK  [PID ]STATUS_FIELD  cmd1 [| cmd2 …] [&]
func (t *Table) formatLine(j *job.Job, detailed, printPids bool) string {
	mark := t.mark(j)

	if detailed {
		var b strings.Builder
		for i, cmd := range j.Commands {
			status := utils.WithPadding(statusField(cmd.LastStatus, !cmd.Reaped()), statusColumnWidth)
			prefix := fmt.Sprintf("[%d]%s  ", j.JobID, mark)
			if i > 0 {
				prefix = strings.Repeat(" ", len(prefix))
			}
			fmt.Fprintf(&b, "%s%d  %s  %s\n", prefix, cmd.Pid, status, cmd.SourceText)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	status := utils.WithPadding(statusField(j.LastStatus, j.Alive()), statusColumnWidth)
	cmds := make([]string, len(j.Commands))
	for i, cmd := range j.Commands {
		cmds[i] = cmd.SourceText
	}
	line := strings.Join(cmds, " | ")
	if j.Background {
		line += " &"
	}

	pidPrefix := ""
	if printPids {
		pidPrefix = fmt.Sprintf("%d  ", j.Commands[0].Pid)
	}

	return fmt.Sprintf("[%d]%s  %s%s  %s", j.JobID, mark, pidPrefix, status, line)
}

// statusField renders STATUS_FIELD: Running / Stopped / Done / Exit N / a
// signal description. For a signaled job it shows Go's description of the
// signal in upper case ("KILLED", "TERMINATED"), not the short name from
// internal/signals ("KILL", "TERM"); this package does not import
// internal/signals.
func statusField(rawStatus int, stillAlive bool) string {
	if rawStatus == -1 {
		return "Running"
	}
	st := syscall.WaitStatus(uint32(rawStatus))
	switch {
	case st.Stopped():
		return "Stopped"
	case stillAlive:
		// The last observed status belongs to a sibling command that already
		// finished; the pipeline itself is still running.
		return "Running"
	case st.Exited():
		if st.ExitStatus() == 0 {
			return "Done"
		}
		return fmt.Sprintf("Exit %d", st.ExitStatus())
	case st.Signaled():
		name := signalDisplayName(st.Signal())
		if st.CoreDump() {
			return name + " (core dumped)"
		}
		return name
	default:
		return "Running"
	}
}

func signalDisplayName(sig syscall.Signal) string {
	return strings.ToUpper(strings.TrimPrefix(sig.String(), "signal "))
}
