package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceFile is one input discovered at the start of a run. It is
// immutable once enumerated and owned by the orchestrator for the run.
type SourceFile struct {
	Path         string // absolute
	Name         string
	Ext          string // lowercased, with leading dot
	Size         int64
	DiscoveredAt time.Time
}

// EnumerationError is the single fatal failure of a run: the input
// directory could not be listed at all.
type EnumerationError struct {
	Dir string
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("cannot enumerate input directory %s: %v", e.Dir, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Enumerate lists the regular files directly in dir (no recursion) in
// natural directory listing order.
func Enumerate(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &EnumerationError{Dir: dir, Err: err}
	}
	now := time.Now()
	sources := make([]SourceFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			abs = filepath.Join(dir, entry.Name())
		}
		sources = append(sources, SourceFile{
			Path:         abs,
			Name:         entry.Name(),
			Ext:          strings.ToLower(filepath.Ext(entry.Name())),
			Size:         info.Size(),
			DiscoveredAt: now,
		})
	}
	return sources, nil
}
