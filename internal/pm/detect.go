package pm

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Detect probes dir for lock files in DetectionOrder and returns the first
// manager whose lock file exists. Falls back to npm.
func Detect(dir string, profiles map[Manager]Profile, log logrus.FieldLogger) Manager {
	for _, m := range DetectionOrder {
		p, ok := profiles[m]
		if !ok || p.LockFile == "" {
			continue
		}
		lock := filepath.Join(dir, p.LockFile)
		_, err := os.Stat(lock)
		if err == nil {
			log.WithField("manager", m).Debug("detected package manager")
			return m
		}
		if !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).WithField("lock_file", p.LockFile).Warn("unexpected error checking lock file")
		}
	}
	log.Warn("no lock file found, defaulting to npm")
	return NPM
}
