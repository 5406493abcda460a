package runner

import (
	"fmt"
	"time"
)

// UndeterminedCode is reported when a process could not be launched or its
// exit status does not fit in 0-255.
const UndeterminedCode = 127

// Kind classifies how a process terminated.
type Kind int

const (
	// Undetermined means the process never ran or its status could not be read.
	Undetermined Kind = iota
	// Exited means the process returned an exit code.
	Exited
	// Signaled means the process was terminated by a signal.
	Signaled
)

// Status is the termination status of a process.
type Status struct {
	Kind   Kind
	Code   int // exit code, set when Kind is Exited
	Signal int // signal number, set when Kind is Signaled
}

// ExitCode normalizes the status into the 0-255 range a shell would report:
// exit codes pass through, signals map to 128+signal, and anything else
// (including out of range values) becomes UndeterminedCode.
func (s Status) ExitCode() uint8 {
	switch s.Kind {
	case Exited:
		if s.Code >= 0 && s.Code <= 255 {
			return uint8(s.Code)
		}
	case Signaled:
		if s.Signal >= 0 && 128+s.Signal <= 255 {
			return uint8(128 + s.Signal)
		}
	}
	return UndeterminedCode
}

func (s Status) String() string {
	switch s.Kind {
	case Exited:
		return fmt.Sprintf("exited(%d)", s.Code)
	case Signaled:
		return fmt.Sprintf("signaled(%d)", s.Signal)
	default:
		return "undetermined"
	}
}

// Result holds the outcome of a command execution. It is built once by
// Runner.Run and not modified afterwards.
type Result struct {
	Output  []byte        // merged stdout and stderr; empty when capture is off
	Status  Status        // how the process ended
	Elapsed time.Duration // wall clock time from launch to exit
}

// ExitCode returns the normalized exit code of the run.
func (r *Result) ExitCode() uint8 {
	return r.Status.ExitCode()
}
