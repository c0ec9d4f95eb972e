package license

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
	"github.com/google/go-cmp/cmp"
)

func TestPartition_Scenario(t *testing.T) {
	pkgs, err := ParseScan([]byte(`{"left-pad": {"licenses": "MIT"}, "shady-pkg": {"licenses": "Custom-EULA"}}`))
	if err != nil {
		t.Fatal(err)
	}
	r := Partition(pkgs)

	if diff := cmp.Diff([]Record{{Name: "left-pad", License: "MIT"}}, r.Compliant); diff != "" {
		t.Errorf("compliant (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Record{{Name: "shady-pkg", License: "Custom-EULA"}}, r.NonCompliant); diff != "" {
		t.Errorf("non-compliant (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	path, err := WriteReport(dir, r)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	compliantAt := strings.Index(report, "## Compliant Dependencies")
	nonCompliantAt := strings.Index(report, "## Non-Compliant Dependencies")
	summaryAt := strings.Index(report, "## Summary")
	leftPad := strings.Index(report, "- left-pad: MIT")
	shady := strings.Index(report, "- shady-pkg: Custom-EULA")
	if !(compliantAt < leftPad && leftPad < nonCompliantAt && nonCompliantAt < shady && shady < summaryAt) {
		t.Errorf("packages not under the right headings:\n%s", report)
	}
	if !strings.Contains(report, "- Total packages: 2") {
		t.Errorf("missing total:\n%s", report)
	}
}

func TestPartition_AnyMatchIsCompliant(t *testing.T) {
	r := Partition(map[string]Info{"dual": {Licenses: "MIT;GPL-3.0"}})
	if len(r.Compliant) != 1 || len(r.NonCompliant) != 0 {
		t.Errorf("MIT;GPL-3.0 should be compliant, got %+v", r)
	}
}

func TestPartition_ExhaustiveAndDisjoint(t *testing.T) {
	pkgs := map[string]Info{
		"a": {Licenses: "MIT"},
		"b": {Licenses: "GPL-3.0"},
		"c": {Licenses: " ISC "},
		"d": {Licenses: "mit"},
		"e": {Licenses: ""},
		"f": {Licenses: "UNKNOWN;0BSD"},
		"g": {Licenses: "(MIT OR Apache-2.0)"},
	}
	r := Partition(pkgs)
	if r.Total() != len(pkgs) {
		t.Fatalf("Total = %d, want %d", r.Total(), len(pkgs))
	}
	seen := map[string]int{}
	for _, rec := range append(append([]Record{}, r.Compliant...), r.NonCompliant...) {
		seen[rec.Name]++
	}
	for name := range pkgs {
		if seen[name] != 1 {
			t.Errorf("%s appears %d times", name, seen[name])
		}
	}
	var names []string
	for _, rec := range r.Compliant {
		names = append(names, rec.Name)
	}
	if diff := cmp.Diff([]string{"a", "c", "f"}, names); diff != "" {
		t.Errorf("compliant names (-want +got):\n%s", diff)
	}
}

func TestParseScan_LicenseArrays(t *testing.T) {
	pkgs, err := ParseScan([]byte(`{"x@1.0.0": {"licenses": ["GPL-2.0", "MIT"], "repository": "r"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := pkgs["x@1.0.0"].Licenses; got != "GPL-2.0;MIT" {
		t.Errorf("Licenses = %q", got)
	}
}

func TestParseScan_Invalid(t *testing.T) {
	if _, err := ParseScan([]byte("npm ERR! something")); err == nil {
		t.Error("expected parse error")
	}
}

type fakeScanner struct {
	stdout string
	err    error
	tool   string
}

func (f *fakeScanner) Tool(_ context.Context, _ pm.Manager, tool string, _ []string, _ runner.Options) (*runner.Result, error) {
	f.tool = tool
	if f.err != nil {
		return nil, f.err
	}
	return &runner.Result{Stdout: f.stdout}, nil
}

func TestScan_UsesLicenseChecker(t *testing.T) {
	f := &fakeScanner{stdout: `{"a": {"licenses": "MIT"}}`}
	pkgs, err := Scan(context.Background(), f, pm.NPM)
	if err != nil {
		t.Fatal(err)
	}
	if f.tool != "license-checker" {
		t.Errorf("tool = %q", f.tool)
	}
	if len(pkgs) != 1 {
		t.Errorf("got %d packages", len(pkgs))
	}
}

func TestScan_PropagatesFailure(t *testing.T) {
	want := &runner.ExecError{Command: "npx license-checker", ExitCode: 1}
	_, err := Scan(context.Background(), &fakeScanner{err: want}, pm.NPM)
	if !errors.Is(err, want) {
		t.Errorf("expected wrapped ExecError, got %v", err)
	}
}
