package batch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Reserve returns a collision-free path for base.ext inside dir. If the
// plain name is taken it probes "base (n).ext" for n = 1, 2, ... until an
// unused path is found. The suffix convention is parenthesized and
// one-based.
//
// Reservation is race-free only within a single run, where the
// orchestrator calls it synchronously between files. Concurrent external
// modification of the directory can make a reservation stale; that is a
// documented limitation, not something this function masks.
func Reserve(dir, base, ext string) string {
	name := base
	if ext != "" {
		name += "." + ext
	}
	candidate := filepath.Join(dir, name)
	if !pathExists(candidate) {
		return candidate
	}
	for n := 1; ; n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
		if ext != "" {
			name += "." + ext
		}
		candidate = filepath.Join(dir, name)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
