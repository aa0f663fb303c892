// Package ignorefile makes sure every project folder has a .gitignore before
// it is published, so dependency trees, build output, and secrets stay out of
// the repository.
package ignorefile

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"shipit/internal/fileutil"
)

// FileName is the ignore-list file created in each project folder.
const FileName = ".gitignore"

//go:embed default.gitignore
var defaultTemplate []byte

// Template returns the default ignore-list content.
func Template() []byte {
	out := make([]byte, len(defaultTemplate))
	copy(out, defaultTemplate)
	return out
}

// Ensure creates folder/.gitignore from the default template when it is
// missing. An existing file is never modified. It reports whether a file was
// written.
func Ensure(folder string, extra ...string) (bool, error) {
	content := Template()
	for _, line := range extra {
		content = append(content, []byte(line+"\n")...)
	}
	wrote, err := fileutil.WriteFileIfMissing(filepath.Join(folder, FileName), content, 0o644)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", FileName, err)
	}
	return wrote, nil
}
