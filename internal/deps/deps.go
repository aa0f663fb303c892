// Package deps reports whether the command-line tools shipit drives are
// installed, and which versions are on PATH.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"shipit/internal/services"
)

// Requirement defines an external CLI shipit relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to the binary to read its version.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckBinaries evaluates the provided requirements and reports availability.
// When runner is non-nil, available binaries are asked for their version.
func CheckBinaries(ctx context.Context, runner services.Runner, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := lookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		if runner != nil && len(req.VersionArgs) > 0 {
			out, err := runner.Run(ctx, services.Command{Binary: cmd, Args: req.VersionArgs})
			if err == nil {
				status.Version = firstLine(out.Combined())
			}
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
