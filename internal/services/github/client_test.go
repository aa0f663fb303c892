package github_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shipit/internal/services"
	"shipit/internal/services/github"
	"shipit/internal/testsupport"
)

func newClient(runner *testsupport.FakeRunner) *github.Client {
	return github.New(github.Options{Visibility: "private"}, runner)
}

func TestCreateClassifiesNameTaken(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("gh repo create",
		testsupport.Fail("GraphQL: Name already exists on this account (createRepository)"))
	err := newClient(runner).Create(context.Background(), t.TempDir(), "my-cool-app")
	if !errors.Is(err, services.ErrNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
}

func TestCreateClassifiesAlreadyLinked(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("gh repo create",
		testsupport.Fail("error: remote origin already exists."))
	err := newClient(runner).Create(context.Background(), t.TempDir(), "app")
	if !errors.Is(err, services.ErrAlreadyLinked) {
		t.Fatalf("expected already linked, got %v", err)
	}
}

func TestCreateOtherFailure(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("gh repo create", testsupport.Fail("HTTP 500"))
	err := newClient(runner).Create(context.Background(), t.TempDir(), "app")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestCreatePassesExplicitDirAndFlags(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	dir := t.TempDir()
	if err := newClient(runner).Create(context.Background(), dir, "app"); err != nil {
		t.Fatalf("create: %v", err)
	}
	calls := runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Dir != dir {
		t.Fatalf("expected dir %s, got %s", dir, calls[0].Dir)
	}
	want := "gh repo create app --private --source . --remote origin --push"
	if calls[0].String() != want {
		t.Fatalf("unexpected command %q", calls[0].String())
	}
}

func TestPushFallsBackToLegacyBranch(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("git push -u origin main", testsupport.Fail("error: src refspec main does not match any"))
	if err := newClient(runner).Push(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("push: %v", err)
	}
	if runner.Count("git push -u origin master") != 1 {
		t.Fatalf("expected master push attempt, got %v", runner.Rendered())
	}
}

func TestPushFailsWhenAllBranchesFail(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("git push", testsupport.Fail("rejected"))
	err := newClient(runner).Push(context.Background(), t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if runner.Count("git push") != 2 {
		t.Fatalf("expected two push attempts, got %v", runner.Rendered())
	}
}

func TestEnsureRepositoryInitOnlyWhenMissing(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	client := newClient(runner)
	dir := t.TempDir()

	if err := client.EnsureRepository(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if runner.Count("git init -b main") != 1 {
		t.Fatalf("expected git init, got %v", runner.Rendered())
	}

	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := client.EnsureRepository(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if runner.Count("git init") != 1 {
		t.Fatalf("expected no second init, got %v", runner.Rendered())
	}
}

func TestCommitAllSkipsCleanTree(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("git status --porcelain", testsupport.OK(""))
	committed, err := newClient(runner).CommitAll(context.Background(), t.TempDir())
	if err != nil || committed {
		t.Fatalf("expected no commit, got %v %v", committed, err)
	}
	if runner.Count("git commit") != 0 {
		t.Fatal("unexpected commit on clean tree")
	}

	runner = (&testsupport.FakeRunner{}).On("git status --porcelain", testsupport.OK("?? index.html"))
	committed, err = newClient(runner).CommitAll(context.Background(), t.TempDir())
	if err != nil || !committed {
		t.Fatalf("expected commit, got %v %v", committed, err)
	}
}

func TestHasRemote(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("git remote get-url origin", testsupport.OK("git@github.com:me/app.git"))
	if !newClient(runner).HasRemote(context.Background(), t.TempDir()) {
		t.Fatal("expected remote")
	}
	runner = (&testsupport.FakeRunner{}).On("git remote get-url origin", testsupport.Fail("No such remote 'origin'"))
	if newClient(runner).HasRemote(context.Background(), t.TempDir()) {
		t.Fatal("expected no remote")
	}
}

func TestAuthCheck(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("gh auth status", testsupport.Fail("You are not logged into any GitHub hosts"))
	err := newClient(runner).AuthCheck(context.Background())
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if services.Details(err).Hint == "" {
		t.Fatal("expected login hint")
	}
}
