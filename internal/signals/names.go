package signals

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
)

// rtMin/rtMax are the Linux real-time signal range as glibc presents it:
// the kernel reserves 32..64, but glibc keeps the first two for its own use
// and reports SIGRTMIN==34. x/sys/unix does not expose SIGRTMIN()/SIGRTMAX()
// as callable functions (those are libc macros resolved via
// __libc_current_sigrtmin, unavailable without cgo), so the boundary is
// hardcoded here to match what a glibc `kill -l` reports.
const (
	rtMin = 34
	rtMax = 64
)

var standardNames = map[int]string{
	int(syscall.SIGHUP):    "HUP",
	int(syscall.SIGINT):    "INT",
	int(syscall.SIGQUIT):   "QUIT",
	int(syscall.SIGILL):    "ILL",
	int(syscall.SIGTRAP):   "TRAP",
	int(syscall.SIGABRT):   "ABRT",
	int(syscall.SIGBUS):    "BUS",
	int(syscall.SIGFPE):    "FPE",
	int(syscall.SIGKILL):   "KILL",
	int(syscall.SIGUSR1):   "USR1",
	int(syscall.SIGSEGV):   "SEGV",
	int(syscall.SIGUSR2):   "USR2",
	int(syscall.SIGPIPE):   "PIPE",
	int(syscall.SIGALRM):   "ALRM",
	int(syscall.SIGTERM):   "TERM",
	16:                     "STKFLT",
	int(syscall.SIGCHLD):   "CHLD",
	int(syscall.SIGCONT):   "CONT",
	int(syscall.SIGSTOP):   "STOP",
	int(syscall.SIGTSTP):   "TSTP",
	int(syscall.SIGTTIN):   "TTIN",
	int(syscall.SIGTTOU):   "TTOU",
	int(syscall.SIGURG):    "URG",
	int(syscall.SIGXCPU):   "XCPU",
	int(syscall.SIGXFSZ):   "XFSZ",
	int(syscall.SIGVTALRM): "VTALRM",
	int(syscall.SIGPROF):   "PROF",
	int(syscall.SIGWINCH):  "WINCH",
	int(syscall.SIGIO):     "IO",
	30:                     "PWR",
	int(syscall.SIGSYS):    "SYS",
}

var namesToNumber = func() map[string]int {
	out := make(map[string]int, len(standardNames))
	for num, name := range standardNames {
		out[name] = num
	}
	return out
}()

// NameOf returns the bare signal name (no "SIG" prefix) for signum, formatting
// real-time signals as RTMIN[+n]/RTMAX[-n] normalized to whichever side of
// the midpoint is closer.
func NameOf(signum int) (string, bool) {
	if name, ok := standardNames[signum]; ok {
		return name, true
	}
	if signum >= rtMin && signum <= rtMax {
		return rtName(signum), true
	}
	return "", false
}

func rtName(signum int) string {
	mid := (rtMin + rtMax) / 2
	if signum <= mid {
		if off := signum - rtMin; off > 0 {
			return fmt.Sprintf("RTMIN+%d", off)
		}
		return "RTMIN"
	}
	if off := rtMax - signum; off > 0 {
		return fmt.Sprintf("RTMAX-%d", off)
	}
	return "RTMAX"
}

// NumberOf parses a signal name or number. Names are matched case-
// insensitively with or without a leading "SIG"; a plain decimal string is
// accepted within [1, SIGRTMAX]. RTMIN/RTMAX/RTMIN+n/RTMAX-n are accepted for
// real-time signals.
func NumberOf(spec string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(spec))
	s = strings.TrimPrefix(s, "SIG")

	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= rtMax {
			return n, true
		}
		return 0, false
	}

	if num, ok := namesToNumber[s]; ok {
		return num, true
	}

	if num, ok := parseRTName(s); ok {
		return num, true
	}
	return 0, false
}

func parseRTName(s string) (int, bool) {
	switch {
	case s == "RTMIN":
		return rtMin, true
	case s == "RTMAX":
		return rtMax, true
	case strings.HasPrefix(s, "RTMIN+"):
		n, err := strconv.Atoi(s[len("RTMIN+"):])
		if err != nil || n < 0 || rtMin+n > rtMax {
			return 0, false
		}
		return rtMin + n, true
	case strings.HasPrefix(s, "RTMAX-"):
		n, err := strconv.Atoi(s[len("RTMAX-"):])
		if err != nil || n < 0 || rtMax-n < rtMin {
			return 0, false
		}
		return rtMax - n, true
	default:
		return 0, false
	}
}

// ListAll returns every signal number in [1, SIGRTMAX] that has a name,
// in ascending order, for the `kill -l` built-in.
func ListAll() []int {
	out := make([]int, 0, len(standardNames)+(rtMax-rtMin+1))
	for num := range standardNames {
		out = append(out, num)
	}
	for num := rtMin; num <= rtMax; num++ {
		out = append(out, num)
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j] < out[j-1] {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}
