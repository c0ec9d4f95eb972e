// Package depcheck extracts unused dependency lists from depcheck's text output.
//
// depcheck has no stable machine format across versions that every manager's
// tool runner can pass through, so the console text is scraped. Anything that
// does not match is treated as "no findings".
package depcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

const (
	CleanMarker      = "No depcheck issue"
	depsHeader       = "Unused dependencies"
	devDepsHeader    = "Unused devDependencies"
	missingDepHeader = "Missing dependencies"
)

// Findings is what could be recovered from one depcheck run.
type Findings struct {
	Dependencies    []string
	DevDependencies []string
	// Clean is set when depcheck printed its no-issues marker.
	Clean bool
	// Matched is set when at least one section header was found.
	Matched bool
}

// Empty reports whether nothing unused was found.
func (f Findings) Empty() bool {
	return len(f.Dependencies) == 0 && len(f.DevDependencies) == 0
}

// Parse scans depcheck output. A section is its header line followed by every
// line up to a blank line, the next section header, or the end of output.
func Parse(output string) Findings {
	var f Findings
	if deps, ok := section(output, depsHeader); ok {
		f.Dependencies = deps
		f.Matched = true
	}
	if deps, ok := section(output, devDepsHeader); ok {
		f.DevDependencies = deps
		f.Matched = true
	}
	if !f.Matched && strings.Contains(output, CleanMarker) {
		f.Clean = true
	}
	return f
}

func section(output, header string) ([]string, bool) {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != header {
			continue
		}
		var items []string
		for _, l := range lines[i+1:] {
			l = strings.TrimSpace(l)
			if l == "" || isHeader(l) {
				break
			}
			items = append(items, strings.TrimSpace(strings.TrimPrefix(l, "*")))
		}
		return items, true
	}
	return nil, false
}

func isHeader(line string) bool {
	switch line {
	case depsHeader, devDepsHeader, missingDepHeader:
		return true
	}
	return false
}

// ToolRunner runs depcheck through the package manager.
type ToolRunner interface {
	Tool(ctx context.Context, m pm.Manager, tool string, args []string, opts runner.Options) (*runner.Result, error)
}

// Analyze runs depcheck and parses its output. depcheck exits non-zero when
// it finds issues, so a non-zero exit is only a failure when the output holds
// neither a section nor the clean marker.
func Analyze(ctx context.Context, r ToolRunner, m pm.Manager) (Findings, error) {
	res, err := r.Tool(ctx, m, "depcheck", nil, runner.Options{Mode: runner.Capture, Tolerant: true})
	if err != nil {
		return Findings{}, err
	}
	output := res.Stdout
	if strings.TrimSpace(output) == "" {
		output = res.Stderr
	}
	f := Parse(output)
	if res.ExitCode != 0 && !f.Matched && !f.Clean {
		return f, fmt.Errorf("depcheck exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return f, nil
}
