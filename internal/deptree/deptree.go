// Package deptree builds the module import graph of a JavaScript or
// TypeScript project with madge and renders it as an indented tree.
package deptree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
)

const (
	DefaultMaxDepth = 5
	Truncated       = "…"
	circular        = " (circular)"
)

// Graph maps a source file to the files it imports.
type Graph map[string][]string

// ResolveEntry picks the file the graph starts from, relative to dir.
// TypeScript projects prefer the manifest's "source" field and the usual
// index.ts locations before falling back to "main".
func ResolveEntry(dir string) (string, error) {
	var manifest struct {
		Main   string `json:"main"`
		Source string `json:"source"`
	}
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading package.json: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &manifest); err != nil {
			return "", fmt.Errorf("parsing package.json: %w", err)
		}
	}

	if exists(filepath.Join(dir, "tsconfig.json")) {
		for _, c := range []string{manifest.Source, "src/index.ts", "index.ts"} {
			if c != "" && exists(filepath.Join(dir, c)) {
				return c, nil
			}
		}
	}
	if manifest.Main != "" {
		return manifest.Main, nil
	}
	return "index.js", nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ToolRunner runs madge through the package manager.
type ToolRunner interface {
	Tool(ctx context.Context, m pm.Manager, tool string, args []string, opts runner.Options) (*runner.Result, error)
}

// Build runs madge on entry and returns the graph without node_modules.
func Build(ctx context.Context, r ToolRunner, m pm.Manager, dir, entry string) (Graph, error) {
	args := []string{"--json"}
	if exists(filepath.Join(dir, "tsconfig.json")) {
		args = append(args, "--ts-config", "tsconfig.json", "--extensions", "ts,tsx,js")
	}
	args = append(args, entry)

	res, err := r.Tool(ctx, m, "madge", args, runner.Options{Mode: runner.Capture})
	if err != nil {
		return nil, err
	}
	return Parse([]byte(res.Stdout))
}

// Parse decodes madge's JSON output, dropping anything under node_modules.
func Parse(data []byte) (Graph, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing madge output: %w", err)
	}
	g := make(Graph, len(raw))
	for file, deps := range raw {
		if vendored(file) {
			continue
		}
		kept := make([]string, 0, len(deps))
		for _, d := range deps {
			if !vendored(d) {
				kept = append(kept, d)
			}
		}
		g[file] = kept
	}
	return g, nil
}

func vendored(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "node_modules")
}

// Root finds the graph key for entry. madge reports paths relative to the
// entry's directory, so an exact match is tried first, then a suffix match,
// then the first file nothing else imports.
func Root(g Graph, entry string) string {
	entry = filepath.ToSlash(filepath.Clean(entry))
	if _, ok := g[entry]; ok {
		return entry
	}
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(entry, "/"+k) {
			return k
		}
	}

	imported := make(map[string]bool)
	for _, deps := range g {
		for _, d := range deps {
			imported[d] = true
		}
	}
	for _, k := range keys {
		if !imported[k] {
			return k
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return entry
}

// Render draws the tree below root. Nodes at maxDepth that still have
// imports get a single truncation line; an import back to an ancestor is
// marked circular and not expanded.
func Render(root string, g Graph, maxDepth int) string {
	var b strings.Builder
	b.WriteString(root + "\n")
	onPath := map[string]bool{root: true}
	render(&b, g, root, "", 0, maxDepth, onPath)
	return b.String()
}

func render(b *strings.Builder, g Graph, node, prefix string, depth, maxDepth int, onPath map[string]bool) {
	children := g[node]
	for i, c := range children {
		last := i == len(children)-1
		branch, cont := "├── ", "│   "
		if last {
			branch, cont = "└── ", "    "
		}

		if onPath[c] {
			b.WriteString(prefix + branch + c + circular + "\n")
			continue
		}
		b.WriteString(prefix + branch + c + "\n")
		if len(g[c]) == 0 {
			continue
		}
		if depth+1 >= maxDepth {
			b.WriteString(prefix + cont + "└── " + Truncated + "\n")
			continue
		}
		onPath[c] = true
		render(b, g, c, prefix+cont, depth+1, maxDepth, onPath)
		delete(onPath, c)
	}
}
