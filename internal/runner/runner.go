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
	"time"

	"github.com/flo-mic/polyglot-pm/internal/config"
	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/sirupsen/logrus"
)

// Mode selects where a child's output goes.
type Mode int

const (
	// Capture buffers stdout and stderr and returns them in the Result.
	Capture Mode = iota
	// Inherit connects the child to the terminal.
	Inherit
)

func (m Mode) String() string {
	if m == Inherit {
		return "inherit"
	}
	return "capture"
}

// Options controls a single invocation.
type Options struct {
	Mode Mode
	// Tolerant returns the Result instead of an error when a captured
	// command exits non-zero. Start failures are still errors.
	Tolerant bool
}

// Result is the outcome of a finished child process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	PeakRSS  int64 // bytes, 0 when the OS does not report it
}

// Runner spawns package managers and other tools in the project directory,
// one at a time.
type Runner struct {
	store *config.Store
	log   logrus.FieldLogger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner that resolves profiles through store and runs
// commands in store.Dir().
func New(store *config.Store, log logrus.FieldLogger) *Runner {
	return &Runner{
		store:  store,
		log:    log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run invokes the manager's executable with the whitespace-separated fields
// of subcommand followed by args.
func (r *Runner) Run(ctx context.Context, m pm.Manager, subcommand string, args []string, opts Options) (*Result, error) {
	p, ok := r.store.Profile(m)
	if !ok || p.Command == "" {
		return nil, &UnsupportedManagerError{Manager: m}
	}
	argv := append(strings.Fields(subcommand), args...)
	return r.Exec(ctx, p.Command, argv, opts)
}

// Tool runs a package CLI such as depcheck through the manager's tool runner
// (npx, pnpm exec, yarn dlx, bunx).
func (r *Runner) Tool(ctx context.Context, m pm.Manager, tool string, args []string, opts Options) (*Result, error) {
	p, ok := r.store.Profile(m)
	if !ok {
		return nil, &UnsupportedManagerError{Manager: m}
	}
	prefix := strings.Fields(p.ToolRunner)
	if len(prefix) == 0 {
		return nil, fmt.Errorf("no tool runner configured for %s", m)
	}
	argv := append(prefix[1:], tool)
	argv = append(argv, args...)
	return r.Exec(ctx, prefix[0], argv, opts)
}

// Exec runs name with args. It blocks until the process exits.
func (r *Runner) Exec(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	r.log.WithFields(logrus.Fields{"cmd": cmdline, "mode": opts.Mode}).Debug("running command")

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = r.store.Dir()

	var stdout, stderr bytes.Buffer
	if opts.Mode == Inherit {
		c.Stdin = r.Stdin
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		PeakRSS:  peakRSS(c.ProcessState),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, &ExecError{Command: cmdline, ExitCode: -1, Err: err}
	}
	res.ExitCode = exitErr.ExitCode()
	if opts.Tolerant && opts.Mode == Capture {
		r.log.WithFields(logrus.Fields{"cmd": cmdline, "exit_code": res.ExitCode}).Debug("tolerating non-zero exit")
		return res, nil
	}
	return nil, &ExecError{Command: cmdline, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
}
