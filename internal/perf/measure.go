// Package perf times package installation, keeps a bounded history of the
// results and reports cache and build information.
package perf

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

// Step names one timed phase of a measurement.
type Step string

const (
	CacheClean           Step = "cacheClean"
	DependencyResolution Step = "dependencyResolution"
	PackageInstallation  Step = "packageInstallation"
	CachedInstallation   Step = "cachedInstallation"
)

// Steps is the fixed order in which a measurement runs.
var Steps = []Step{CacheClean, DependencyResolution, PackageInstallation, CachedInstallation}

// SlowInstallSeconds is the total above which a hint is printed.
const SlowInstallSeconds = 60

// Result is one measurement. Durations are in seconds.
type Result struct {
	Total       float64          `json:"total"`
	Steps       map[Step]float64 `json:"steps"`
	MemoryUsage int64            `json:"memoryUsage"`
	Timestamp   int64            `json:"timestamp"`
}

// CommandRunner is the part of runner.Runner used here.
type CommandRunner interface {
	Run(ctx context.Context, m pm.Manager, subcommand string, args []string, opts runner.Options) (*runner.Result, error)
}

// StepCommand returns the subcommand for step, or "" when the profile does
// not define one and the step is skipped.
func StepCommand(step Step, p pm.Profile) string {
	switch step {
	case CacheClean:
		return p.CacheCleanCommand
	case DependencyResolution:
		return p.ResolutionCommand
	case PackageInstallation, CachedInstallation:
		return "install"
	}
	return ""
}

// Measure runs every step in order and times it. Skipped steps record zero.
// The first failing step aborts the measurement.
func Measure(ctx context.Context, r CommandRunner, m pm.Manager, p pm.Profile) (Result, error) {
	res := Result{Steps: make(map[Step]float64, len(Steps))}
	var peak int64

	start := time.Now()
	for _, step := range Steps {
		sub := StepCommand(step, p)
		if sub == "" {
			res.Steps[step] = 0
			continue
		}
		stepStart := time.Now()
		out, err := r.Run(ctx, m, sub, nil, runner.Options{Mode: runner.Capture})
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", step, err)
		}
		res.Steps[step] = time.Since(stepStart).Seconds()
		if out.PeakRSS > peak {
			peak = out.PeakRSS
		}
	}
	res.Total = time.Since(start).Seconds()

	if peak == 0 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		peak = int64(ms.Sys)
	}
	res.MemoryUsage = peak
	res.Timestamp = time.Now().UnixMilli()
	return res, nil
}
