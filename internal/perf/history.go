package perf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// History is the bounded on-disk list of past measurements, oldest first.
type History struct {
	Path string
	Max  int
	Log  logrus.FieldLogger
}

// Load returns the stored results. A missing file is an empty history; a
// corrupt one is logged and treated as empty so a new run can replace it.
func (h *History) Load() ([]Result, error) {
	data, err := os.ReadFile(h.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading performance history: %w", err)
	}
	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		h.Log.WithError(err).WithField("path", h.Path).Warn("ignoring unreadable performance history")
		return nil, nil
	}
	return results, nil
}

// Append adds r and keeps only the newest Max entries. It returns what was kept.
func (h *History) Append(r Result) ([]Result, error) {
	results, err := h.Load()
	if err != nil {
		return nil, err
	}
	results = append(results, r)
	if limit := h.Max; limit > 0 && len(results) > limit {
		results = results[len(results)-limit:]
	}

	if err := os.MkdirAll(filepath.Dir(h.Path), 0755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(h.Path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing performance history: %w", err)
	}
	return results, nil
}

// Deviation returns the percentage by which total differs from the mean of
// the prior totals. ok is false when there is nothing to compare against.
func Deviation(prior []Result, total float64) (pct float64, ok bool) {
	if len(prior) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range prior {
		sum += r.Total
	}
	mean := sum / float64(len(prior))
	if mean == 0 {
		return 0, false
	}
	return (total - mean) / mean * 100, true
}
