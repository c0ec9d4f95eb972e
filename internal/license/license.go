// Package license partitions dependency licenses against an allow-list and
// renders the compliance report.
package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

// ReportFile is written to the project root on every successful check.
const ReportFile = "license-compliance-report.md"

// Approved is the license allow-list. Matching is exact and case-sensitive.
var Approved = []string{
	"MIT",
	"Apache-2.0",
	"BSD-3-Clause",
	"BSD-2-Clause",
	"ISC",
	"0BSD",
	"CC0-1.0",
}

// Record is one package and its license expression as reported by the scanner.
type Record struct {
	Name    string
	License string
}

// Report is the partition of scanned packages.
type Report struct {
	Compliant    []Record
	NonCompliant []Record
}

// Total is the number of packages in the report.
func (r Report) Total() int { return len(r.Compliant) + len(r.NonCompliant) }

// Info is the subset of license-checker's per-package output that is used.
type Info struct {
	Licenses Licenses `json:"licenses"`
}

// Licenses accepts both "MIT" and ["MIT", "ISC"] and stores them ";"-joined.
type Licenses string

func (l *Licenses) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = Licenses(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("licenses: expected string or array: %w", err)
	}
	*l = Licenses(strings.Join(list, ";"))
	return nil
}

// Scanner runs the external license scanner.
type Scanner interface {
	Tool(ctx context.Context, m pm.Manager, tool string, args []string, opts runner.Options) (*runner.Result, error)
}

// Scan runs license-checker over production dependencies and decodes its JSON output.
func Scan(ctx context.Context, s Scanner, m pm.Manager) (map[string]Info, error) {
	res, err := s.Tool(ctx, m, "license-checker",
		[]string{"--production", "--json", "--excludePrivatePackages"},
		runner.Options{Mode: runner.Capture})
	if err != nil {
		return nil, fmt.Errorf("license scan: %w", err)
	}
	return ParseScan([]byte(res.Stdout))
}

// ParseScan decodes license-checker JSON output.
func ParseScan(data []byte) (map[string]Info, error) {
	out := make(map[string]Info)
	if err := json.Unmarshal(bytes.TrimSpace(data), &out); err != nil {
		return nil, fmt.Errorf("parsing license-checker output: %w", err)
	}
	return out, nil
}

// Partition splits packages into compliant and non-compliant. A package is
// compliant when any of its ";"-separated licenses is approved. Both lists
// are sorted by name.
func Partition(pkgs map[string]Info) Report {
	var r Report
	for name, info := range pkgs {
		rec := Record{Name: name, License: string(info.Licenses)}
		if IsApproved(rec.License) {
			r.Compliant = append(r.Compliant, rec)
		} else {
			r.NonCompliant = append(r.NonCompliant, rec)
		}
	}
	byName := func(list []Record) func(i, j int) bool {
		return func(i, j int) bool { return list[i].Name < list[j].Name }
	}
	sort.Slice(r.Compliant, byName(r.Compliant))
	sort.Slice(r.NonCompliant, byName(r.NonCompliant))
	return r
}

// IsApproved reports whether any token of a ";"-separated license expression
// is on the allow-list.
func IsApproved(expr string) bool {
	for _, tok := range strings.Split(expr, ";") {
		tok = strings.TrimSpace(tok)
		for _, ok := range Approved {
			if tok == ok {
				return true
			}
		}
	}
	return false
}

// Markdown renders the compliance report.
func Markdown(r Report) string {
	var sb strings.Builder
	sb.WriteString("# License Compliance Report\n\n")

	sb.WriteString("## Compliant Dependencies\n\n")
	for _, rec := range r.Compliant {
		fmt.Fprintf(&sb, "- %s: %s\n", rec.Name, rec.License)
	}

	sb.WriteString("\n## Non-Compliant Dependencies\n\n")
	for _, rec := range r.NonCompliant {
		fmt.Fprintf(&sb, "- %s: %s\n", rec.Name, rec.License)
	}

	sb.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&sb, "- Total packages: %d\n", r.Total())
	fmt.Fprintf(&sb, "- Compliant: %d\n", len(r.Compliant))
	fmt.Fprintf(&sb, "- Non-compliant: %d\n", len(r.NonCompliant))
	return sb.String()
}

// WriteReport writes the Markdown report to dir and returns its path.
func WriteReport(dir string, r Report) (string, error) {
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, []byte(Markdown(r)), 0644); err != nil {
		return "", fmt.Errorf("writing license report: %w", err)
	}
	return path, nil
}
