package perf

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

// BundleDir is where the build is expected to write its output.
const BundleDir = "dist"

const (
	slowBuild       = 60 * time.Second
	largeBundleSize = 5 << 20
)

// BuildMetrics is the outcome of a timed project build.
type BuildMetrics struct {
	BuildTime   time.Duration
	BundleSize  int64 // bytes under BundleDir
	BundleFound bool
}

// AnalyzeBuild runs the project's build script and sums the size of the
// build output.
func AnalyzeBuild(ctx context.Context, r CommandRunner, m pm.Manager, projectDir string) (BuildMetrics, error) {
	var b BuildMetrics
	start := time.Now()
	if _, err := r.Run(ctx, m, "run build", nil, runner.Options{Mode: runner.Capture}); err != nil {
		return b, err
	}
	b.BuildTime = time.Since(start)

	size, err := dirSize(filepath.Join(projectDir, BundleDir))
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	b.BundleSize = size
	b.BundleFound = true
	return b, nil
}

// Recommendations returns hints for slow builds and large bundles.
func (b BuildMetrics) Recommendations() []string {
	var out []string
	if b.BuildTime > slowBuild {
		out = append(out, "Consider optimizing your build process to reduce build time.")
	}
	if b.BundleSize > largeBundleSize {
		out = append(out, "Your bundle size is large. Consider code splitting or removing unused dependencies.")
	}
	return out
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
