package perf

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

// CacheInfo describes where (or whether) the manager keeps its package cache.
// It is informational only; failures are folded into the returned text.
func CacheInfo(ctx context.Context, r CommandRunner, m pm.Manager, projectDir string) string {
	capture := runner.Options{Mode: runner.Capture}
	switch m {
	case pm.NPM:
		if _, err := r.Run(ctx, m, "cache verify", nil, capture); err != nil {
			return "Error getting cache info: " + err.Error()
		}
		return "npm cache verified"
	case pm.Yarn:
		out, err := r.Run(ctx, m, "cache dir", nil, capture)
		if err != nil {
			return "Error getting cache info: " + err.Error()
		}
		return "Yarn cache directory: " + strings.TrimSpace(out.Stdout)
	case pm.PNPM:
		out, err := r.Run(ctx, m, "store path", nil, capture)
		if err != nil {
			return "Error getting cache info: " + err.Error()
		}
		return "pnpm store path: " + strings.TrimSpace(out.Stdout)
	case pm.Bun:
		dir, err := BunCacheDir(projectDir)
		if err != nil {
			return "Error getting cache info: " + err.Error()
		}
		return "Bun cache directory: " + dir
	}
	return "Cache information not available for " + string(m)
}

// BunCacheDir resolves bun's install cache: $BUN_INSTALL_CACHE_DIR, then
// install.cache in the project's bunfig.toml, then ~/.bunfig.toml, then the
// default ~/.bun/install/cache.
func BunCacheDir(projectDir string) (string, error) {
	if dir := os.Getenv("BUN_INSTALL_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	home, _ := os.UserHomeDir()

	candidates := []string{filepath.Join(projectDir, "bunfig.toml")}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".bunfig.toml"))
	}
	for _, path := range candidates {
		dir, err := bunfigCacheDir(path)
		if err != nil {
			return "", err
		}
		if dir != "" {
			return expandHome(dir, home), nil
		}
	}
	return filepath.Join(home, ".bun", "install", "cache"), nil
}

// bunfigCacheDir reads install.cache, which bun accepts either as a path
// string or as a table with a dir key.
func bunfigCacheDir(path string) (string, error) {
	var f struct {
		Install struct {
			Cache toml.Primitive `toml:"cache"`
		} `toml:"install"`
	}
	md, err := toml.DecodeFile(path, &f)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !md.IsDefined("install", "cache") {
		return "", nil
	}

	var s string
	if err := md.PrimitiveDecode(f.Install.Cache, &s); err == nil {
		return s, nil
	}
	var table struct {
		Dir string `toml:"dir"`
	}
	if err := md.PrimitiveDecode(f.Install.Cache, &table); err != nil {
		return "", err
	}
	return table.Dir, nil
}

func expandHome(path, home string) string {
	if home != "" && (path == "~" || strings.HasPrefix(path, "~/")) {
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
