//go:build darwin

package runner

import (
	"os"
	"syscall"
)

// peakRSS reports the child's max resident set size; macOS reports bytes.
func peakRSS(ps *os.ProcessState) int64 {
	if ps == nil {
		return 0
	}
	if ru, ok := ps.SysUsage().(*syscall.Rusage); ok {
		return int64(ru.Maxrss)
	}
	return 0
}
