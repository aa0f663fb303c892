package hosting

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/services/netlify"
	"shipit/internal/services/vercel"
	"shipit/internal/stage"
	"shipit/internal/testsupport"
)

func newUnit(t *testing.T) *stage.Unit {
	t.Helper()
	dir := testsupport.MakeProject(t, t.TempDir(), "site")
	return &stage.Unit{Path: dir, Name: "site", Record: record.New("my-cool-app")}
}

func fixed(s *Stage) *Stage {
	s.disambiguate = func() string { return "abc123" }
	return s
}

func TestVercelLinksUnlinkedFolderThenDeploys(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	s := fixed(NewStage(record.StageHostA, vercel.New("", runner), logging.NewNop()))
	unit := newUnit(t)

	if err := s.Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []string{
		"vercel project add my-cool-app-abc123",
		"vercel link --yes --project my-cool-app-abc123",
		"vercel deploy --prod --yes",
	}
	got := runner.Rendered()
	if len(got) != len(want) {
		t.Fatalf("unexpected calls %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestLinkedFolderOnlyDeploys(t *testing.T) {
	runner := &testsupport.FakeRunner{}
	s := fixed(NewStage(record.StageHostB, netlify.New("", "", runner), logging.NewNop()))
	unit := newUnit(t)
	testsupport.WriteFile(t, filepath.Join(unit.Path, netlify.StateFile), `{"siteId":"site-1"}`)

	if err := s.Execute(context.Background(), unit); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := runner.Rendered(); len(got) != 1 || got[0] != "netlify deploy --prod --dir ." {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestLinkFailureIsSwallowed(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).
		On("netlify sites:create", testsupport.OK(`{"id":"site-9"}`)).
		On("netlify link", testsupport.Fail("link failed"))
	s := fixed(NewStage(record.StageHostB, netlify.New("", "", runner), logging.NewNop()))

	if err := s.Execute(context.Background(), newUnit(t)); err != nil {
		t.Fatalf("link failure must not fail the stage: %v", err)
	}
	if runner.Count("netlify deploy") != 1 {
		t.Fatalf("expected deploy, got %v", runner.Rendered())
	}
}

func TestProvisionFailureStillDeploys(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("vercel project add", testsupport.Fail("rate limited"))
	s := fixed(NewStage(record.StageHostA, vercel.New("", runner), logging.NewNop()))

	if err := s.Execute(context.Background(), newUnit(t)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if runner.Count("vercel link") != 0 || runner.Count("vercel deploy") != 1 {
		t.Fatalf("unexpected calls %v", runner.Rendered())
	}
}

func TestDeployFailureFailsStage(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("vercel deploy", testsupport.Fail("build failed"))
	s := fixed(NewStage(record.StageHostA, vercel.New("", runner), logging.NewNop()))

	err := s.Execute(context.Background(), newUnit(t))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestHealthCheckReportsAuthFailure(t *testing.T) {
	runner := (&testsupport.FakeRunner{}).On("vercel whoami", testsupport.Fail("No existing credentials"))
	health := NewStage(record.StageHostA, vercel.New("", runner), logging.NewNop()).HealthCheck(context.Background())
	if health.Ready || health.Name != "host_a" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestDisabledNeverSucceeds(t *testing.T) {
	d := NewDisabled(record.StageHostB)
	if d.HealthCheck(context.Background()).Ready {
		t.Fatal("disabled provider must be unhealthy")
	}
	if err := d.Execute(context.Background(), newUnit(t)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
