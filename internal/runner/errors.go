package runner

import (
	"fmt"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
)

// UnsupportedManagerError is returned when no profile is configured for a manager.
type UnsupportedManagerError struct {
	Manager pm.Manager
}

func (e *UnsupportedManagerError) Error() string {
	return fmt.Sprintf("unsupported package manager: %s", e.Manager)
}

// ExecError reports a child process that could not be started or exited non-zero.
// ExitCode is -1 when the process never ran or was killed by a signal.
type ExecError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	var msg string
	if e.ExitCode == -1 {
		msg = fmt.Sprintf("%s: %v", e.Command, e.Err)
	} else {
		msg = fmt.Sprintf("%s: exit code %d", e.Command, e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }
