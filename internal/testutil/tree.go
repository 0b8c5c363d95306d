package testutil

import (
	"os"
	"path/filepath"
)

// WriteTree creates every file in files under root, creating parent
// directories as needed. Keys are slash-separated relative paths.
func WriteTree(root string, files map[string]string) error {
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
