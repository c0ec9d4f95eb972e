// Package version computes semantic version bumps, rewrites package.json and
// records the release in git.
package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

// Increment is the kind of bump requested.
type Increment string

const (
	Patch  Increment = "patch"
	Minor  Increment = "minor"
	Major  Increment = "major"
	Custom Increment = "custom"
)

// Increments lists the choices in menu order.
var Increments = []Increment{Patch, Minor, Major, Custom}

// ErrNoVersion is returned when the manifest has no version field.
var ErrNoVersion = errors.New("no version found in package.json")

// ValidateCustom accepts a full semantic version, with or without a leading "v".
func ValidateCustom(s string) error {
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(s), "v")); err != nil {
		return fmt.Errorf("please enter a valid semantic version")
	}
	return nil
}

// Next returns the version after applying inc to current. custom is only
// used for Custom.
func Next(current string, inc Increment, custom string) (string, error) {
	if inc == Custom {
		if err := ValidateCustom(custom); err != nil {
			return "", err
		}
		v, _ := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(custom), "v"))
		return v.String(), nil
	}

	cur, err := semver.NewVersion(current)
	if err != nil {
		return "", fmt.Errorf("current version %q: %w", current, err)
	}
	var next semver.Version
	switch inc {
	case Patch:
		next = cur.IncPatch()
	case Minor:
		next = cur.IncMinor()
	case Major:
		next = cur.IncMajor()
	default:
		return "", fmt.Errorf("unknown increment %q", inc)
	}
	return next.String(), nil
}

// Bump reads the manifest at path, applies inc and writes it back. It returns
// the previous and new versions.
func Bump(path string, inc Increment, custom string) (old, next string, err error) {
	m, err := ReadManifest(path)
	if err != nil {
		return "", "", err
	}
	old = m.String("version")
	if old == "" {
		return "", "", ErrNoVersion
	}
	next, err = Next(old, inc, custom)
	if err != nil {
		return old, "", err
	}
	m.SetString("version", next)
	if err := m.Write(path); err != nil {
		return old, "", err
	}
	return old, next, nil
}

// Executor runs an arbitrary program.
type Executor interface {
	Exec(ctx context.Context, name string, args []string, opts runner.Options) (*runner.Result, error)
}

// Tag stages the manifest, commits it and creates an annotated tag. It stops
// at the first failing git command; the manifest change is left in place.
func Tag(ctx context.Context, x Executor, version string) error {
	steps := [][]string{
		{"add", ManifestFile},
		{"commit", "-m", "Bump version to " + version},
		{"tag", "-a", "v" + version, "-m", "Version " + version},
	}
	for _, args := range steps {
		if _, err := x.Exec(ctx, "git", args, runner.Options{Mode: runner.Capture}); err != nil {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
	}
	return nil
}
