//go:build !windows

package relocate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"shipit/internal/logging"
	"shipit/internal/testsupport"
)

// flakyRename fails with errno for the first n calls, then renames for real.
type flakyRename struct {
	n     int
	errno error
	calls int
}

func (f *flakyRename) rename(oldpath, newpath string) error {
	f.calls++
	if f.calls <= f.n {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: f.errno}
	}
	return os.Rename(oldpath, newpath)
}

func setup(t *testing.T) (src, dest string) {
	t.Helper()
	root := t.TempDir()
	src = testsupport.MakeProject(t, root, "my-cool-app")
	dest = filepath.Join(root, "_deployed", "my-cool-app")
	return src, dest
}

func newGuard(f *flakyRename, runner *testsupport.FakeRunner, sleeps *int) *Guard {
	opts := Options{
		Delay:  3 * time.Second,
		Logger: logging.NewNop(),
		Rename: f.rename,
		Sleep: func(context.Context, time.Duration) error {
			*sleeps++
			return nil
		},
	}
	if runner != nil {
		opts.Runner = runner
		opts.KillProcesses = []string{"node"}
	}
	return New(opts)
}

func TestRelocateRetriesLockErrors(t *testing.T) {
	for _, n := range []int{0, 1, 4, 9} {
		src, dest := setup(t)
		flaky := &flakyRename{n: n, errno: unix.EBUSY}
		sleeps := 0

		result, err := newGuard(flaky, nil, &sleeps).Relocate(context.Background(), src, dest)
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", n, err)
		}
		if result.Attempts != n+1 || flaky.calls != n+1 {
			t.Fatalf("n=%d: expected %d attempts, got %d (calls %d)", n, n+1, result.Attempts, flaky.calls)
		}
		if sleeps != n {
			t.Fatalf("n=%d: expected %d sleeps, got %d", n, n, sleeps)
		}
		if _, err := os.Stat(filepath.Join(dest, "index.html")); err != nil {
			t.Fatalf("n=%d: destination missing: %v", n, err)
		}
		if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("n=%d: source still present", n)
		}
	}
}

func TestRelocateGivesUpAfterTenLockErrors(t *testing.T) {
	src, dest := setup(t)
	flaky := &flakyRename{n: 10, errno: unix.EACCES}
	sleeps := 0

	result, err := newGuard(flaky, nil, &sleeps).Relocate(context.Background(), src, dest)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if flaky.calls != 10 || result.Attempts != 10 {
		t.Fatalf("expected 10 attempts, got %d", flaky.calls)
	}
	if _, err := os.Stat(filepath.Join(src, "index.html")); err != nil {
		t.Fatalf("source must remain intact: %v", err)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("nothing may be created at the destination")
	}
}

func TestRelocateAbortsOnOtherErrors(t *testing.T) {
	src, dest := setup(t)
	flaky := &flakyRename{n: 10, errno: unix.EXDEV}
	sleeps := 0

	_, err := newGuard(flaky, nil, &sleeps).Relocate(context.Background(), src, dest)
	if err == nil || errors.Is(err, ErrLocked) {
		t.Fatalf("expected immediate non-lock failure, got %v", err)
	}
	if flaky.calls != 1 || sleeps != 0 {
		t.Fatalf("expected a single attempt, got %d", flaky.calls)
	}
}

func TestRelocateKillsLingeringProcessesBetweenAttempts(t *testing.T) {
	src, dest := setup(t)
	flaky := &flakyRename{n: 2, errno: unix.ETXTBSY}
	runner := (&testsupport.FakeRunner{}).On("pkill", testsupport.Fail("no process found"))
	sleeps := 0

	if _, err := newGuard(flaky, runner, &sleeps).Relocate(context.Background(), src, dest); err != nil {
		t.Fatal(err)
	}
	if runner.Count("pkill -x node") != 2 {
		t.Fatalf("expected two kill attempts, got %v", runner.Rendered())
	}
}

func TestRelocateCollisionUsesSuffixedDestination(t *testing.T) {
	src, dest := setup(t)
	testsupport.WriteFile(t, filepath.Join(dest, "original.txt"), "keep me")
	now := time.Date(2026, 3, 1, 12, 30, 45, 123456789, time.UTC)
	guard := New(Options{Logger: logging.NewNop(), Now: func() time.Time { return now }})

	result, err := guard.Relocate(context.Background(), src, dest)
	if err != nil {
		t.Fatal(err)
	}
	want := dest + "-20260301-123045.123456789"
	if result.Destination != want {
		t.Fatalf("got destination %q want %q", result.Destination, want)
	}
	data, err := os.ReadFile(filepath.Join(dest, "original.txt"))
	if err != nil || string(data) != "keep me" {
		t.Fatalf("original destination disturbed: %v %q", err, data)
	}
	if _, err := os.Stat(filepath.Join(dest, "index.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("folders must never be merged")
	}
	if _, err := os.Stat(filepath.Join(want, "index.html")); err != nil {
		t.Fatalf("relocated folder missing: %v", err)
	}
}

func TestIsLockError(t *testing.T) {
	if !IsLockError(&os.PathError{Op: "rename", Path: "x", Err: unix.EPERM}) {
		t.Fatal("EPERM should be lock-class")
	}
	if IsLockError(&os.PathError{Op: "rename", Path: "x", Err: unix.ENOENT}) {
		t.Fatal("ENOENT is not lock-class")
	}
	if IsLockError(nil) {
		t.Fatal("nil is not lock-class")
	}
}
