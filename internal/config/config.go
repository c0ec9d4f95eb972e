package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/flo-mic/polyglot-pm/internal/pm"
)

// Config is the complete runtime configuration.
type Config struct {
	Profiles               map[pm.Manager]pm.Profile `json:"packageManagers"`
	PerformanceResultsFile string                    `json:"performanceResultsFile"`
	MaxPerformanceResults  int                       `json:"maxPerformanceResults"`
	CITemplates            map[string]string         `json:"ciConfigTemplates"`
}

// Partial holds the top-level keys to overlay. Nil fields are left alone.
type Partial struct {
	Profiles               map[pm.Manager]pm.Profile `json:"packageManagers"`
	PerformanceResultsFile *string                   `json:"performanceResultsFile"`
	MaxPerformanceResults  *int                      `json:"maxPerformanceResults"`
	CITemplates            map[string]string         `json:"ciConfigTemplates"`
}

// LoadError reports an override file that exists but cannot be used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store owns the configuration for one process. It is not safe for
// concurrent writers.
type Store struct {
	dir string
	cfg Config
}

// NewStore returns a store with the built-in defaults. Relative paths given
// to Load and Save are resolved against dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, cfg: Default()}
}

// Dir returns the project directory the store was created for.
func (s *Store) Dir() string { return s.dir }

func (s *Store) resolve(path string) string {
	if path == "" {
		path = DefaultFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

// Load overlays the JSON file at path (default .polyglot-pm.json) onto the
// current configuration. A missing file is not an error.
func (s *Store) Load(path string) error {
	path = s.resolve(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}

	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if p.PerformanceResultsFile != nil && strings.TrimSpace(*p.PerformanceResultsFile) == "" {
		return &LoadError{Path: path, Err: errors.New("performanceResultsFile must not be empty")}
	}
	if p.MaxPerformanceResults != nil && *p.MaxPerformanceResults < 1 {
		return &LoadError{Path: path, Err: fmt.Errorf("maxPerformanceResults must be at least 1, got %d", *p.MaxPerformanceResults)}
	}

	s.Update(p)
	return nil
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	return s.cfg.clone()
}

// Update shallow-merges p into the configuration: every key set in p
// replaces the whole current value for that key.
func (s *Store) Update(p Partial) {
	if p.Profiles != nil {
		s.cfg.Profiles = maps.Clone(p.Profiles)
	}
	if p.PerformanceResultsFile != nil {
		s.cfg.PerformanceResultsFile = *p.PerformanceResultsFile
	}
	if p.MaxPerformanceResults != nil {
		s.cfg.MaxPerformanceResults = *p.MaxPerformanceResults
	}
	if p.CITemplates != nil {
		s.cfg.CITemplates = maps.Clone(p.CITemplates)
	}
}

// Save writes the configuration as JSON to path (default .polyglot-pm.json),
// replacing any existing file.
func (s *Store) Save(path string) error {
	path = s.resolve(path)
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Profile returns the profile for m.
func (s *Store) Profile(m pm.Manager) (pm.Profile, bool) {
	p, ok := s.cfg.Profiles[m]
	return p, ok
}

// Path resolves a possibly relative file name against the store directory.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (c Config) clone() Config {
	out := c
	out.Profiles = maps.Clone(c.Profiles)
	out.CITemplates = maps.Clone(c.CITemplates)
	return out
}
