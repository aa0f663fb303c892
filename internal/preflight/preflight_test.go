package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shipit/internal/hosting"
	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/stage"
	"shipit/internal/testsupport"
	"shipit/internal/workflow"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllReportsProviderAuth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	runner := (&testsupport.FakeRunner{}).On("netlify status", testsupport.Fail("Not logged in"))
	handlers := workflow.DefaultHandlers(cfg, runner, logging.NewNop())

	results := RunAll(context.Background(), cfg, handlers)
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["Working root"].Passed {
		t.Fatalf("expected root check to pass: %+v", byName["Working root"])
	}
	if _, ok := byName["Completed directory"]; ok {
		t.Fatal("completed directory is only checked once it exists")
	}
	if !byName["Host A (host_a)"].Passed {
		t.Fatalf("expected host A to pass: %+v", byName["Host A (host_a)"])
	}
	if byName["Host B (host_b)"].Passed {
		t.Fatal("expected host B to fail")
	}
}

func TestCheckStagesDisabledProvider(t *testing.T) {
	results := CheckStages(context.Background(), []stage.Handler{hosting.NewDisabled(record.StageHostA)})
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Netlify.Enabled = false
	cfg.Relocation.KillProcesses = []string{"node"}
	reqs := Requirements(cfg)
	names := map[string]bool{}
	for _, r := range reqs {
		names[r.Name] = true
	}
	if names["Netlify CLI"] || !names["Vercel CLI"] || !names["git"] {
		t.Fatalf("unexpected requirements %+v", reqs)
	}
	if reqs[len(reqs)-1].Optional != true {
		t.Fatal("process killer should be optional")
	}
}
