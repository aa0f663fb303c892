package ignorefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	wrote, err := Ensure(dir, ".shipit.toml.tmp.*")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !wrote {
		t.Fatal("expected file to be written")
	}
	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"node_modules/", ".env", ".vercel/", ".shipit.toml.tmp.*"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in template:\n%s", want, content)
		}
	}
}

func TestEnsureNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wrote, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if wrote {
		t.Fatal("expected existing file to be kept")
	}
	content, _ := os.ReadFile(path)
	if string(content) != "custom\n" {
		t.Fatalf("existing file modified: %q", content)
	}
}

func TestEnsureMissingFolder(t *testing.T) {
	if _, err := Ensure(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing folder")
	}
}
