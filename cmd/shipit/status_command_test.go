package main

import (
	"path/filepath"
	"testing"
)

func TestStatusShowsRecordedProgress(t *testing.T) {
	env := setupCLITestEnv(t)
	writeFile(t, filepath.Join(env.root, "alpha", ".shipit.toml"), `identity = "alpha-0042"

[stages]
version_control = true
host_a = false
host_b = true
`)
	writeFile(t, filepath.Join(env.root, "beta", ".shipit.toml"), "not = [valid")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "alpha-0042")
	requireContains(t, out, "sidecar")
	requireContains(t, out, "corrupt")
	requireContains(t, out, "pending")
}

func TestStatusEmptyRoot(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "No project folders found")
}
