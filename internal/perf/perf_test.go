package perf

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
	"github.com/flo-mic/polyglot-pm/internal/testutil"
	"github.com/sirupsen/logrus/hooks/test"
)

func newHistory(t *testing.T, max int) *History {
	t.Helper()
	log, _ := test.NewNullLogger()
	return &History{Path: filepath.Join(t.TempDir(), ".polyglot-performance.json"), Max: max, Log: log}
}

func TestHistory_LoadMissingIsEmpty(t *testing.T) {
	results, err := newHistory(t, 3).Load()
	if err != nil || len(results) != 0 {
		t.Errorf("results = %v, err = %v", results, err)
	}
}

func TestHistory_BoundedFIFO(t *testing.T) {
	h := newHistory(t, 3)
	for i := 1; i <= 7; i++ {
		kept, err := h.Append(Result{Total: float64(i), Timestamp: int64(i)})
		if err != nil {
			t.Fatal(err)
		}
		if len(kept) > 3 {
			t.Fatalf("after %d appends history has %d entries", i, len(kept))
		}
	}
	results, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	for i, want := range []float64{5, 6, 7} {
		if results[i].Total != want {
			t.Errorf("results[%d].Total = %v, want %v", i, results[i].Total, want)
		}
	}
}

func TestHistory_CorruptFileIsReplaced(t *testing.T) {
	h := newHistory(t, 5)
	if err := os.WriteFile(h.Path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	kept, err := h.Append(Result{Total: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 {
		t.Errorf("len = %d, want 1", len(kept))
	}
}

func TestDeviation(t *testing.T) {
	if _, ok := Deviation(nil, 10); ok {
		t.Error("expected no deviation without prior runs")
	}
	pct, ok := Deviation([]Result{{Total: 8}, {Total: 12}}, 15)
	if !ok || math.Abs(pct-50) > 1e-9 {
		t.Errorf("pct = %v, ok = %v, want 50", pct, ok)
	}
}

func TestMeasure_SkipsUndefinedSteps(t *testing.T) {
	exe, calls := testutil.RecordingScript(t, "bun", "")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(t.TempDir(), pm.Bun, exe), log)

	res, err := Measure(context.Background(), r, pm.Bun, pm.Profile{Command: exe})
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps[CacheClean] != 0 || res.Steps[DependencyResolution] != 0 {
		t.Errorf("skipped steps should be zero: %+v", res.Steps)
	}
	if len(res.Steps) != len(Steps) {
		t.Errorf("expected every step recorded, got %+v", res.Steps)
	}
	if got := testutil.Calls(t, calls); len(got) != 2 || got[0] != "install" || got[1] != "install" {
		t.Errorf("calls = %q", got)
	}
	if res.MemoryUsage <= 0 {
		t.Errorf("MemoryUsage = %d", res.MemoryUsage)
	}
	if res.Timestamp == 0 {
		t.Error("Timestamp not set")
	}
}

func TestMeasure_RunsStepsInOrder(t *testing.T) {
	exe, calls := testutil.RecordingScript(t, "npm", "")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(t.TempDir(), pm.NPM, exe), log)
	p := pm.Profile{CacheCleanCommand: "cache clean --force", ResolutionCommand: "install --package-lock-only"}

	if _, err := Measure(context.Background(), r, pm.NPM, p); err != nil {
		t.Fatal(err)
	}
	want := []string{"cache clean --force", "install --package-lock-only", "install", "install"}
	got := testutil.Calls(t, calls)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestMeasure_StepFailureAborts(t *testing.T) {
	exe := testutil.Script(t, "npm", "exit 1")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(t.TempDir(), pm.NPM, exe), log)

	_, err := Measure(context.Background(), r, pm.NPM, pm.Profile{})
	if err == nil || !strings.Contains(err.Error(), string(PackageInstallation)) {
		t.Errorf("expected error naming the failing step, got %v", err)
	}
}

func TestBunCacheDir_EnvWins(t *testing.T) {
	t.Setenv("BUN_INSTALL_CACHE_DIR", "/tmp/bun-cache")
	dir, err := BunCacheDir(t.TempDir())
	if err != nil || dir != "/tmp/bun-cache" {
		t.Errorf("dir = %q, err = %v", dir, err)
	}
}

func TestBunCacheDir_ProjectBunfigTable(t *testing.T) {
	t.Setenv("BUN_INSTALL_CACHE_DIR", "")
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	os.WriteFile(filepath.Join(project, "bunfig.toml"), []byte("[install.cache]\ndir = \"/srv/bun\"\n"), 0644)

	dir, err := BunCacheDir(project)
	if err != nil || dir != "/srv/bun" {
		t.Errorf("dir = %q, err = %v", dir, err)
	}
}

func TestBunCacheDir_StringFormAndHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BUN_INSTALL_CACHE_DIR", "")
	t.Setenv("HOME", home)
	os.WriteFile(filepath.Join(home, ".bunfig.toml"), []byte("[install]\ncache = \"~/cache/bun\"\n"), 0644)

	dir, err := BunCacheDir(t.TempDir())
	if err != nil || dir != filepath.Join(home, "cache", "bun") {
		t.Errorf("dir = %q, err = %v", dir, err)
	}
}

func TestBunCacheDir_Default(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BUN_INSTALL_CACHE_DIR", "")
	t.Setenv("HOME", home)

	dir, err := BunCacheDir(t.TempDir())
	if err != nil || dir != filepath.Join(home, ".bun", "install", "cache") {
		t.Errorf("dir = %q, err = %v", dir, err)
	}
}

func TestCacheInfo_Yarn(t *testing.T) {
	exe := testutil.Script(t, "yarn", "echo /home/me/.cache/yarn")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(t.TempDir(), pm.Yarn, exe), log)

	got := CacheInfo(context.Background(), r, pm.Yarn, t.TempDir())
	if got != "Yarn cache directory: /home/me/.cache/yarn" {
		t.Errorf("CacheInfo = %q", got)
	}
}

func TestCacheInfo_ErrorIsReported(t *testing.T) {
	exe := testutil.Script(t, "npm", "exit 2")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(t.TempDir(), pm.NPM, exe), log)

	got := CacheInfo(context.Background(), r, pm.NPM, t.TempDir())
	if !strings.HasPrefix(got, "Error getting cache info") {
		t.Errorf("CacheInfo = %q", got)
	}
}

func TestAnalyzeBuild_SumsBundle(t *testing.T) {
	project := t.TempDir()
	os.MkdirAll(filepath.Join(project, "dist", "assets"), 0755)
	os.WriteFile(filepath.Join(project, "dist", "index.js"), make([]byte, 100), 0644)
	os.WriteFile(filepath.Join(project, "dist", "assets", "app.css"), make([]byte, 50), 0644)

	exe, calls := testutil.RecordingScript(t, "npm", "")
	log, _ := test.NewNullLogger()
	r := runner.New(testutil.Store(project, pm.NPM, exe), log)

	b, err := AnalyzeBuild(context.Background(), r, pm.NPM, project)
	if err != nil {
		t.Fatal(err)
	}
	if !b.BundleFound || b.BundleSize != 150 {
		t.Errorf("got %+v", b)
	}
	if got := testutil.Calls(t, calls); len(got) != 1 || got[0] != "run build" {
		t.Errorf("calls = %q", got)
	}
	if len(b.Recommendations()) != 0 {
		t.Errorf("unexpected recommendations: %v", b.Recommendations())
	}
}

func TestBuildMetrics_Recommendations(t *testing.T) {
	b := BuildMetrics{BuildTime: 2 * time.Minute, BundleSize: 6 << 20}
	if got := len(b.Recommendations()); got != 2 {
		t.Errorf("got %d recommendations, want 2", got)
	}
}
