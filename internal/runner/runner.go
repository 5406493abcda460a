// Package runner executes the monitored command with its standard error
// merged into standard output, and distills every way the process can end
// into a Result.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/deixis/hcrun"
)

// MaxLogChars bounds how much captured output is echoed to the diagnostic log.
const MaxLogChars = 1000

// Runner executes commands on behalf of the orchestrator.
// Debug level on Logger turns on execution traces.
type Runner struct {
	Logger zerolog.Logger

	// Stdin feeds the command; os.Stdin when nil.
	Stdin io.Reader
}

// Run executes argv[0] with argv[1:] as arguments, inheriting the caller's
// environment and standard input. When capture is false the output goes to the null device
// instead of memory.
//
// Run never fails: a command that cannot be launched produces a Result with
// UndeterminedCode and a short diagnostic as its output, so the outcome can
// still be reported. Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, argv []string, capture bool) *Result {
	if len(argv) == 0 {
		return r.failed(errors.New("empty command"), capture, 0)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	// A single writer for both streams makes os/exec share one pipe, which
	// keeps stdout and stderr interleaved in the order they were written.
	var out bytes.Buffer
	if capture {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}

	r.Logger.Debug().Strs("argv", argv).Bool("capture", capture).Msg("about to run")

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return r.failed(err, capture, elapsed)
		}
	}

	res := &Result{
		Output:  out.Bytes(),
		Status:  statusOf(cmd.ProcessState),
		Elapsed: elapsed,
	}

	if e := r.Logger.Debug(); e.Enabled() {
		e.Str("output", truncate(strings.ToValidUTF8(string(res.Output), "\uFFFD"), MaxLogChars)).
			Stringer("status", res.Status).
			Dur("elapsed", elapsed).
			Msg("command finished")
	}
	return res
}

// failed absorbs a launch failure into a Result.
func (r *Runner) failed(err error, capture bool, elapsed time.Duration) *Result {
	r.Logger.Debug().Err(err).Dur("elapsed", elapsed).Msg("command failed to run")

	res := &Result{
		Status:  Status{Kind: Undetermined},
		Elapsed: elapsed,
	}
	if capture {
		res.Output = fmt.Appendf(nil, "%s: Command failed: %v", hcrun.Name, err)
	}
	return res
}

func statusOf(ps *os.ProcessState) Status {
	if ps == nil {
		return Status{Kind: Undetermined}
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		switch {
		case ws.Exited():
			return Status{Kind: Exited, Code: ws.ExitStatus()}
		case ws.Signaled():
			return Status{Kind: Signaled, Signal: int(ws.Signal())}
		default:
			return Status{Kind: Undetermined}
		}
	}
	if code := ps.ExitCode(); code >= 0 {
		return Status{Kind: Exited, Code: code}
	}
	return Status{Kind: Undetermined}
}

// truncate shortens s for display. Strings longer than limit characters keep
// their first limit-3 characters followed by "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if keep := max(limit-3, 0); keep < len(runes) {
		runes = runes[:keep]
	}
	return string(runes) + "..."
}
