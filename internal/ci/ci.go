// Package ci renders CI configuration templates for a package manager and
// writes them where each platform expects them.
package ci

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
	"gopkg.in/yaml.v3"
)

// Platform is a CI service and the file it reads its configuration from.
type Platform struct {
	Name string
	Path string
}

// Platforms lists the supported CI services in menu order.
var Platforms = []Platform{
	{Name: "GitHub Actions", Path: ".github/workflows/ci.yml"},
	{Name: "GitLab CI", Path: ".gitlab-ci.yml"},
	{Name: "CircleCI", Path: ".circleci/config.yml"},
	{Name: "Travis CI", Path: ".travis.yml"},
}

// DefaultNodeVersion is offered when prompting for the runtime version.
const DefaultNodeVersion = "18"

const (
	nodeVersionToken    = "{{nodeVersion}}"
	packageManagerToken = "{{packageManager}}"
)

var leftoverToken = regexp.MustCompile(`\{\{\s*[^}]*\}\}`)

// leftover returns the first {{...}} token in s. ${{ ... }} expressions
// belong to the CI platform and are left alone.
func leftover(s string) string {
	for _, loc := range leftoverToken.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && s[loc[0]-1] == '$' {
			continue
		}
		return s[loc[0]:loc[1]]
	}
	return ""
}

// Lookup returns the platform called name.
func Lookup(name string) (Platform, error) {
	for _, p := range Platforms {
		if p.Name == name {
			return p, nil
		}
	}
	return Platform{}, fmt.Errorf("unsupported CI platform: %s", name)
}

// Names returns the platform names in menu order.
func Names() []string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = p.Name
	}
	return names
}

// Render substitutes the node version and package manager into tmpl. It fails
// if any other {{...}} token remains (${{ ... }} expressions are kept) or the result is not valid YAML.
func Render(tmpl, nodeVersion string, m pm.Manager) (string, error) {
	out := strings.ReplaceAll(tmpl, nodeVersionToken, nodeVersion)
	out = strings.ReplaceAll(out, packageManagerToken, string(m))

	if tok := leftover(out); tok != "" {
		return "", fmt.Errorf("template has unresolved placeholder %s", tok)
	}
	var doc any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		return "", fmt.Errorf("rendered config is not valid YAML: %w", err)
	}
	return out, nil
}

// Generate renders the stored template for platform and writes it below dir.
// It returns the path written, relative to dir.
func Generate(dir string, templates map[string]string, platform, nodeVersion string, m pm.Manager) (string, error) {
	p, err := Lookup(platform)
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[p.Name]
	if !ok || strings.TrimSpace(tmpl) == "" {
		return "", fmt.Errorf("no template found for %s", p.Name)
	}
	content, err := Render(tmpl, nodeVersion, m)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name, err)
	}

	dest := filepath.Join(dir, filepath.FromSlash(p.Path))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p.Path, err)
	}
	return p.Path, nil
}
