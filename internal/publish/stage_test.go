package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shipit/internal/ignorefile"
	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/services/github"
	"shipit/internal/stage"
	"shipit/internal/testsupport"
)

func newUnit(t *testing.T, identity string) *stage.Unit {
	t.Helper()
	dir := testsupport.MakeProject(t, t.TempDir(), "My Cool App")
	return &stage.Unit{Path: dir, Name: "My Cool App", Record: record.New(identity)}
}

func newStage(runner *testsupport.FakeRunner, suffixes ...string) *Stage {
	i := 0
	return NewStage(github.New(github.Options{}, runner), Options{
		IgnoreExtra: []string{".shipit.toml"},
		Suffix: func() string {
			s := suffixes[i%len(suffixes)]
			i++
			return s
		},
	}, logging.NewNop())
}

func TestExecuteCreatesIgnoreFileAndRemote(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git status --porcelain", testsupport.OK("?? index.html")).
		On("git remote get-url origin", testsupport.Fail("No such remote"))
	unit := newUnit(t, "my-cool-app")

	if err := newStage(runner, "0001").Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(unit.Path, ignorefile.FileName))
	if err != nil {
		t.Fatalf("ignore file: %v", err)
	}
	if !strings.Contains(string(data), ".shipit.toml") {
		t.Fatal("expected sidecar to be ignored")
	}
	if runner.Count("gh repo create my-cool-app ") != 1 {
		t.Fatalf("expected create call, got %v", runner.Rendered())
	}
	for _, call := range runner.Calls() {
		if call.Binary == "git" && call.Dir != unit.Path {
			t.Fatalf("git ran outside the folder: %+v", call)
		}
	}
}

func TestExecuteRenamesOnCollision(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git remote get-url origin", testsupport.Fail("No such remote")).
		On("gh repo create my-cool-app ", testsupport.Fail("Name already exists on this account")).
		On("gh repo create my-cool-app-0042 ", testsupport.Fail("Name already exists on this account"))
	unit := newUnit(t, "my-cool-app")

	if err := newStage(runner, "0042", "0077").Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if unit.Record.Identity != "my-cool-app-0077" {
		t.Fatalf("expected suffixed identity, got %q", unit.Record.Identity)
	}
	if runner.Count("gh repo create") != 3 {
		t.Fatalf("expected 3 create attempts, got %v", runner.Rendered())
	}
}

func TestExecuteGivesUpAfterBoundedCollisions(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git remote get-url origin", testsupport.Fail("No such remote")).
		On("gh repo create", testsupport.Fail("Name already exists on this account"))
	unit := newUnit(t, "my-cool-app")

	err := newStage(runner, "1111").Execute(context.Background(), unit)
	if !errors.Is(err, services.ErrNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
	if runner.Count("gh repo create") != defaultCreateAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultCreateAttempts, runner.Count("gh repo create"))
	}
	if unit.Record.Identity != "my-cool-app" {
		t.Fatalf("identity should be restored on failure, got %q", unit.Record.Identity)
	}
}

func TestExecutePushesWhenAlreadyLinked(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git remote get-url origin", testsupport.Fail("No such remote")).
		On("gh repo create", testsupport.Fail("error: remote origin already exists."))
	unit := newUnit(t, "my-cool-app")

	if err := newStage(runner, "0001").Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if runner.Count("git push -u origin main") != 1 {
		t.Fatalf("expected push, got %v", runner.Rendered())
	}
	if runner.Count("gh repo create") != 1 {
		t.Fatal("expected a single create attempt")
	}
}

func TestExecutePushesExistingRemoteWithoutCreate(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git remote get-url origin", testsupport.OK("git@github.com:me/my-cool-app.git"))
	unit := newUnit(t, "my-cool-app")

	if err := newStage(runner, "0001").Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if runner.Count("gh repo create") != 0 {
		t.Fatal("create must not run when origin exists")
	}
	if runner.Count("git push") != 1 {
		t.Fatalf("expected one push, got %v", runner.Rendered())
	}
}

func TestExecuteKeepsExistingIgnoreFile(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("git remote get-url origin", testsupport.OK("origin"))
	unit := newUnit(t, "app")
	custom := "custom-only\n"
	testsupport.WriteFile(t, filepath.Join(unit.Path, ignorefile.FileName), custom)

	if err := newStage(runner, "0001").Execute(context.Background(), unit); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(unit.Path, ignorefile.FileName))
	if string(data) != custom {
		t.Fatalf("ignore file was modified: %q", data)
	}
}

func TestHealthCheck(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("gh auth status", testsupport.Fail("not logged in"))
	if newStage(runner, "1").HealthCheck(context.Background()).Ready {
		t.Fatal("expected unhealthy stage")
	}
	if !newStage(&testsupport.FakeRunner{}, "1").HealthCheck(context.Background()).Ready {
		t.Fatal("expected healthy stage")
	}
}
