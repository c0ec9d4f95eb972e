// Package testutil provides fake package-manager executables for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flo-mic/polyglot-pm/internal/config"
	"github.com/flo-mic/polyglot-pm/internal/pm"
)

// Script writes an executable /bin/sh script named name into a fresh temp
// directory and returns its path.
func Script(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := "#!/bin/sh\n" + body
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// RecordingScript returns a fake executable that appends its arguments, one
// invocation per line, to the returned log file, then runs body.
func RecordingScript(t *testing.T, name, body string) (exe, logFile string) {
	t.Helper()
	logFile = filepath.Join(t.TempDir(), name+".log")
	exe = Script(t, name, `echo "$*" >> '`+logFile+"'\n"+body)
	return exe, logFile
}

// Calls reads the invocations recorded by a RecordingScript.
func Calls(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// Store returns a config store rooted at dir whose profile for m runs exe,
// both directly and as its tool runner.
func Store(dir string, m pm.Manager, exe string) *config.Store {
	s := config.NewStore(dir)
	profiles := s.Get().Profiles
	p := profiles[m]
	p.Command = exe
	p.ToolRunner = exe
	profiles[m] = p
	s.Update(config.Partial{Profiles: profiles})
	return s
}
