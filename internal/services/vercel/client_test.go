package vercel_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shipit/internal/services"
	"shipit/internal/services/vercel"
	"shipit/internal/testsupport"
)

func TestIsLinked(t *testing.T) {
	client := vercel.New("", &testsupport.FakeRunner{})
	dir := t.TempDir()
	if client.IsLinked(dir) {
		t.Fatal("fresh folder should not be linked")
	}
	testsupport.WriteFile(t, filepath.Join(dir, vercel.LinkMarker), `{"projectId":"prj_1"}`)
	if !client.IsLinked(dir) {
		t.Fatal("expected linked folder")
	}
}

func TestCommandsCarryWorkingDirectory(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	client := vercel.New("vercel", runner)
	dir := t.TempDir()
	ctx := context.Background()

	if err := client.CreateProject(ctx, dir, "app-abc123"); err != nil {
		t.Fatal(err)
	}
	if err := client.Link(ctx, dir, "app-abc123"); err != nil {
		t.Fatal(err)
	}
	if err := client.Deploy(ctx, dir); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"vercel project add app-abc123",
		"vercel link --yes --project app-abc123",
		"vercel deploy --prod --yes",
	}
	calls := runner.Calls()
	if len(calls) != len(want) {
		t.Fatalf("unexpected calls %v", runner.Rendered())
	}
	for i, call := range calls {
		if call.String() != want[i] {
			t.Fatalf("call %d: got %q want %q", i, call.String(), want[i])
		}
		if call.Dir != dir {
			t.Fatalf("call %d ran in %q", i, call.Dir)
		}
	}
}

func TestDeployFailure(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("vercel deploy", testsupport.Fail("Error: build failed"))
	err := vercel.New("", runner).Deploy(context.Background(), t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestAuthCheck(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("vercel whoami", testsupport.Fail("Error: No existing credentials found."))
	err := vercel.New("", runner).AuthCheck(context.Background())
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
