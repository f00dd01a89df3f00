package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Step is one startup task run by Prepare.
type Step struct {
	Name string
	Run  func() error
}

// Prepare makes sure every working directory exists before the server
// accepts requests.
func Prepare(logger *slog.Logger, dirs ...string) error {
	if logger == nil {
		logger = slog.Default()
	}

	steps := make([]Step, 0, len(dirs))
	for _, dir := range dirs {
		dir := dir
		steps = append(steps, Step{
			Name: "ensure_dir " + dir,
			Run:  func() error { return os.MkdirAll(dir, 0o755) },
		})
	}

	for _, s := range steps {
		if err := s.Run(); err != nil {
			logger.Error("storage step failed", "name", s.Name, "error", err)
			return fmt.Errorf("storage: %s: %w", s.Name, err)
		}
		logger.Debug("storage step completed", "name", s.Name)
	}
	return nil
}

// UniquePath returns a path inside dir that no other request will pick.
// ext includes the leading dot.
func UniquePath(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+uuid.NewString()+ext)
}

// Sweep deletes regular files in dir whose modification time is older than
// maxAge relative to now. It returns how many files were removed.
func Sweep(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("storage: read %s: %w", dir, err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
