package workflow

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// skippedDirs are never treated as project folders.
var skippedDirs = map[string]struct{}{
	"node_modules":     {},
	"__pycache__":      {},
	"vendor":           {},
	"bower_components": {},
}

// Enumerate returns the names of the candidate project folders directly under
// root, sorted. The completed-items directory, hidden directories, and
// dependency/metadata directories are excluded.
func Enumerate(root, doneDirName string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == doneDirName || strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := skippedDirs[strings.ToLower(name)]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
