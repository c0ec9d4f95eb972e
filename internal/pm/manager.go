package pm

import "fmt"

// Manager identifies a JavaScript package manager.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
)

// DetectionOrder is the order in which lock files are probed.
var DetectionOrder = []Manager{Bun, PNPM, NPM, Yarn}

// Parse returns the Manager named by s. Only the four known identifiers are accepted.
func Parse(s string) (Manager, error) {
	switch m := Manager(s); m {
	case NPM, Yarn, PNPM, Bun:
		return m, nil
	}
	return "", fmt.Errorf("unknown package manager %q (want one of npm, yarn, pnpm, bun)", s)
}

func (m Manager) String() string { return string(m) }

// UnmarshalText lets Manager be used as a JSON object key while rejecting unknown names.
func (m *Manager) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Manager) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// Profile describes how to talk to one package manager.
type Profile struct {
	LockFile          string `json:"lockFile"`
	Command           string `json:"command"`
	CacheCleanCommand string `json:"cacheCleanCommand,omitempty"`
	ResolutionCommand string `json:"resolutionCommand,omitempty"`
	AuditCommand      string `json:"auditCommand,omitempty"`  // empty: no native audit
	UpdateCommand     string `json:"updateCommand,omitempty"` // "update" or "upgrade"
	ToolRunner        string `json:"toolRunner,omitempty"`    // e.g. "npx", "pnpm exec"
}
