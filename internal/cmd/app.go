package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/flo-mic/polyglot-pm/internal/ci"
	"github.com/flo-mic/polyglot-pm/internal/config"
	"github.com/flo-mic/polyglot-pm/internal/depcheck"
	"github.com/flo-mic/polyglot-pm/internal/deptree"
	"github.com/flo-mic/polyglot-pm/internal/license"
	"github.com/flo-mic/polyglot-pm/internal/perf"
	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
	"github.com/flo-mic/polyglot-pm/internal/version"
	"github.com/sirupsen/logrus"
)

// App holds what every action needs: the configuration, the detected
// manager and the ways to talk to the user.
type App struct {
	Store   *config.Store
	Runner  *runner.Runner
	Manager pm.Manager
	Prompt  Prompter
	Log     logrus.FieldLogger

	out *console
}

// NewApp wires an App writing its results to out.
func NewApp(store *config.Store, r *runner.Runner, m pm.Manager, p Prompter, log logrus.FieldLogger, out io.Writer) *App {
	return &App{Store: store, Runner: r, Manager: m, Prompt: p, Log: log, out: newConsole(out)}
}

func (a *App) profile() (pm.Profile, error) {
	p, ok := a.Store.Profile(a.Manager)
	if !ok {
		return pm.Profile{}, &runner.UnsupportedManagerError{Manager: a.Manager}
	}
	return p, nil
}

// spin runs fn behind a spinner and returns fn's error.
func (a *App) spin(title string, fn func() error) error {
	var err error
	if serr := a.Prompt.Spin(title, func() { err = fn() }); serr != nil {
		return serr
	}
	return err
}

// RunDirect passes args straight to the package manager with the terminal
// attached.
func (a *App) RunDirect(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}
	_, err := a.Runner.Run(ctx, a.Manager, args[0], args[1:], runner.Options{Mode: runner.Inherit})
	return err
}

// Install runs the manager's install with the terminal attached.
func (a *App) Install(ctx context.Context) error {
	if _, err := a.Runner.Run(ctx, a.Manager, "install", nil, runner.Options{Mode: runner.Inherit}); err != nil {
		return err
	}
	a.out.Success("Dependencies installed.")
	return nil
}

// CheckLicenses scans production dependencies and writes the compliance report.
func (a *App) CheckLicenses(ctx context.Context) error {
	var pkgs map[string]license.Info
	err := a.spin("Checking license compliance...", func() (err error) {
		pkgs, err = license.Scan(ctx, a.Runner, a.Manager)
		return err
	})
	if err != nil {
		return fmt.Errorf("license check failed: %w", err)
	}

	report := license.Partition(pkgs)
	if len(report.NonCompliant) == 0 {
		a.out.Success("All dependencies have approved licenses.")
	} else {
		a.out.Warn("Some dependencies have non-approved licenses:")
		for _, rec := range report.NonCompliant {
			a.out.Error("  - %s: %s", rec.Name, rec.License)
		}
	}

	a.out.Heading("License summary:")
	a.out.Plain("  Total packages: %d", report.Total())
	a.out.Success("  Compliant: %d", len(report.Compliant))
	a.out.Error("  Non-compliant: %d", len(report.NonCompliant))

	path, err := license.WriteReport(a.Store.Dir(), report)
	if err != nil {
		return err
	}
	a.out.Success("License compliance report generated: %s", path)
	return nil
}

// UpdateDependencies runs the profile's update command.
func (a *App) UpdateDependencies(ctx context.Context) error {
	p, err := a.profile()
	if err != nil {
		return err
	}
	if p.UpdateCommand == "" {
		a.out.Warn("Updating dependencies is not supported for %s.", a.Manager)
		return nil
	}
	err = a.spin("Updating dependencies...", func() error {
		_, err := a.Runner.Run(ctx, a.Manager, p.UpdateCommand, nil, runner.Options{Mode: runner.Capture})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update dependencies: %w", err)
	}
	a.out.Success("Dependencies updated successfully!")
	return nil
}

// UnusedDependencies reports what depcheck considers unused.
func (a *App) UnusedDependencies(ctx context.Context) error {
	var f depcheck.Findings
	err := a.spin("Analyzing unused dependencies...", func() (err error) {
		f, err = depcheck.Analyze(ctx, a.Runner, a.Manager)
		return err
	})
	if err != nil {
		a.out.Warn("Make sure depcheck is installed globally or in your project.")
		return fmt.Errorf("dependency analysis failed: %w", err)
	}

	if f.Empty() {
		a.out.Success("No unused dependencies found.")
		return nil
	}
	if len(f.Dependencies) > 0 {
		a.out.Warn("Unused dependencies:")
		for _, d := range f.Dependencies {
			a.out.Warn("  * %s", d)
		}
	}
	if len(f.DevDependencies) > 0 {
		a.out.Warn("Unused devDependencies:")
		for _, d := range f.DevDependencies {
			a.out.Warn("  * %s", d)
		}
	}
	a.out.Info("Consider removing these dependencies to optimize your project.")
	return nil
}

// Audit runs the native vulnerability audit, where the manager has one.
func (a *App) Audit(ctx context.Context) error {
	p, err := a.profile()
	if err != nil {
		return err
	}
	if p.AuditCommand == "" {
		a.out.Warn("Vulnerability checking is not supported for %s.", a.Manager)
		return nil
	}
	if _, err := a.Runner.Run(ctx, a.Manager, p.AuditCommand, nil, runner.Options{Mode: runner.Inherit}); err != nil {
		return fmt.Errorf("vulnerability check failed: %w", err)
	}
	a.out.Success("Vulnerability check complete.")
	return nil
}

// GenerateCI asks for a platform and Node.js version and writes its config.
func (a *App) GenerateCI(ctx context.Context) error {
	platform, err := a.Prompt.Select("Which CI/CD platform would you like to generate a config for?", ci.Names())
	if err != nil {
		return err
	}
	nodeVersion, err := a.Prompt.Input("Node.js version", ci.DefaultNodeVersion, func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("node version cannot be empty")
		}
		return nil
	})
	if err != nil {
		return err
	}

	path, err := ci.Generate(a.Store.Dir(), a.Store.Get().CITemplates, platform, strings.TrimSpace(nodeVersion), a.Manager)
	if err != nil {
		return err
	}
	a.out.Success("%s configuration written to %s", platform, path)
	return nil
}

// MeasureInstall times a clean install and records it in the history file.
func (a *App) MeasureInstall(ctx context.Context) error {
	p, err := a.profile()
	if err != nil {
		return err
	}
	cfg := a.Store.Get()
	history := &perf.History{
		Path: a.Store.Path(cfg.PerformanceResultsFile),
		Max:  cfg.MaxPerformanceResults,
		Log:  a.Log,
	}
	prior, err := history.Load()
	if err != nil {
		return err
	}

	var res perf.Result
	err = a.spin("Measuring installation performance...", func() (err error) {
		res, err = perf.Measure(ctx, a.Runner, a.Manager, p)
		return err
	})
	if err != nil {
		return fmt.Errorf("performance measurement failed: %w", err)
	}
	if _, err := history.Append(res); err != nil {
		return err
	}

	a.out.Heading("Installation performance (%s):", a.Manager)
	for _, step := range perf.Steps {
		a.out.Plain("  %-22s %.2fs", string(step)+":", res.Steps[step])
	}
	a.out.Plain("  %-22s %.2fs", "total:", res.Total)
	a.out.Plain("  %-22s %s", "memory:", humanize.Bytes(uint64(res.MemoryUsage)))
	if pct, ok := perf.Deviation(prior, res.Total); ok {
		a.out.Info("Deviation from the average of %d previous runs: %+.2f%%", len(prior), pct)
	}
	a.out.Info("%s", perf.CacheInfo(ctx, a.Runner, a.Manager, a.Store.Dir()))
	if res.Total > perf.SlowInstallSeconds {
		a.out.Warn("Tip: Consider using pnpm for faster installations, or check for network issues.")
	}
	return nil
}

// AnalyzeBuild times the build script and reports the bundle size.
func (a *App) AnalyzeBuild(ctx context.Context) error {
	var b perf.BuildMetrics
	err := a.spin("Running build...", func() (err error) {
		b, err = perf.AnalyzeBuild(ctx, a.Runner, a.Manager, a.Store.Dir())
		return err
	})
	if err != nil {
		return fmt.Errorf("build analysis failed: %w", err)
	}

	a.out.Heading("Build performance:")
	a.out.Plain("  Build time: %.2fs", b.BuildTime.Seconds())
	if b.BundleFound {
		a.out.Plain("  Bundle size (%s): %s", perf.BundleDir, humanize.Bytes(uint64(b.BundleSize)))
	} else {
		a.out.Warn("  No %s directory found; bundle size unknown.", perf.BundleDir)
	}
	for _, rec := range b.Recommendations() {
		a.out.Warn("- %s", rec)
	}
	return nil
}

// BumpVersion updates package.json and optionally commits and tags it.
func (a *App) BumpVersion(ctx context.Context) error {
	path := filepath.Join(a.Store.Dir(), version.ManifestFile)
	m, err := version.ReadManifest(path)
	if err != nil {
		return err
	}
	current := m.String("version")
	if current == "" {
		return version.ErrNoVersion
	}

	options := make([]string, len(version.Increments))
	for i, inc := range version.Increments {
		options[i] = string(inc)
	}
	choice, err := a.Prompt.Select(fmt.Sprintf("Current version is %s. How should it change?", current), options)
	if err != nil {
		return err
	}
	var custom string
	if version.Increment(choice) == version.Custom {
		if custom, err = a.Prompt.Input("New version", current, version.ValidateCustom); err != nil {
			return err
		}
	}

	_, next, err := version.Bump(path, version.Increment(choice), custom)
	if err != nil {
		return err
	}
	a.out.Success("Version updated to %s", next)

	tag, err := a.Prompt.Confirm("Commit and tag this version in git?", true)
	if err != nil || !tag {
		return err
	}
	if err := version.Tag(ctx, a.Runner, next); err != nil {
		return fmt.Errorf("failed to create git tag: %w", err)
	}
	a.out.Success("Git tag v%s created", next)
	return nil
}

// DependencyTree prints the import tree from the project entry file.
func (a *App) DependencyTree(ctx context.Context) error {
	depthStr, err := a.Prompt.Input("Maximum depth", strconv.Itoa(deptree.DefaultMaxDepth), validateDepth)
	if err != nil {
		return err
	}
	maxDepth, _ := strconv.Atoi(strings.TrimSpace(depthStr))

	dir := a.Store.Dir()
	entry, err := deptree.ResolveEntry(dir)
	if err != nil {
		return err
	}
	var g deptree.Graph
	err = a.spin("Analyzing dependency tree...", func() (err error) {
		g, err = deptree.Build(ctx, a.Runner, a.Manager, dir, entry)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to analyze dependency tree: %w", err)
	}

	a.out.Heading("Dependency tree of %s:", filepath.Base(dir))
	fmt.Fprint(a.out.w, deptree.Render(deptree.Root(g, entry), g, maxDepth))
	return nil
}

func validateDepth(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("depth must be a whole number of at least 1")
	}
	return nil
}
