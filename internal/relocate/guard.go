package relocate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shipit/internal/logging"
	"shipit/internal/retry"
	"shipit/internal/services"
)

const (
	defaultAttempts = 10
	timestampLayout = "20060102-150405.000000000"
)

// ErrLocked marks a relocation that exhausted its attempts on lock-class errors.
var ErrLocked = errors.New("folder is locked by another process")

// IsLockError reports whether err is an OS exclusivity or permission failure
// that may clear once another process releases its handles.
func IsLockError(err error) bool {
	return err != nil && isLockErrno(err)
}

// Options configures a Guard.
type Options struct {
	// Attempts defaults to 10.
	Attempts int
	// Delay is waited between lock-class failures.
	Delay time.Duration
	// KillProcesses names executables terminated between attempts.
	KillProcesses []string
	Runner        services.Runner
	Logger        *slog.Logger

	// Rename, Sleep, and Now default to the real implementations.
	Rename func(oldpath, newpath string) error
	Sleep  retry.Sleeper
	Now    func() time.Time
}

// Result describes a successful relocation.
type Result struct {
	Destination string
	Attempts    int
}

// Guard moves folders with lock-aware retries.
type Guard struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Guard, filling unset options with defaults.
func New(opts Options) *Guard {
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.Rename == nil {
		opts.Rename = os.Rename
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Guard{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "relocate")}
}

// Relocate renames src to dest. When dest already exists the destination name
// gets a high-resolution timestamp suffix; an existing destination is never
// merged into or overwritten. On failure src is left untouched.
func (g *Guard) Relocate(ctx context.Context, src, dest string) (Result, error) {
	if err := ensureNotWorkingDir(src); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination parent: %w", err)
	}
	target, err := g.freeDestination(dest)
	if err != nil {
		return Result{}, err
	}
	if target != dest {
		g.logger.Info("destination exists; using suffixed name",
			logging.String(logging.FieldEventType, "relocation_collision"),
			logging.String("destination", target),
		)
	}

	result := retry.Do(ctx, retry.Policy{
		Attempts:  g.opts.Attempts,
		Delay:     g.opts.Delay,
		Retryable: IsLockError,
		Sleep:     g.opts.Sleep,
		OnRetry: func(attempt int, err error) {
			g.logger.Warn("folder locked; retrying relocation",
				logging.String(logging.FieldEventType, "relocation_retry"),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", g.opts.Attempts),
				logging.String(logging.FieldErrorHint, "close editors, terminals, or dev servers using the folder"),
				logging.String(logging.FieldImpact, "relocation delayed"),
				logging.Error(err),
			)
			g.killLingering(ctx)
		},
	}, func(context.Context, int) error {
		return g.opts.Rename(src, target)
	})
	if result.Err != nil {
		if errors.Is(result.Err, retry.ErrExhausted) {
			return Result{Attempts: result.Attempts}, services.WithHint(
				services.Wrap(ErrLocked, "relocate", "rename", filepath.Base(src), result.Err),
				"the folder stays in place and is retried on the next run",
			)
		}
		return Result{Attempts: result.Attempts}, services.Wrap(services.ErrExternalTool, "relocate", "rename", filepath.Base(src), result.Err)
	}
	return Result{Destination: target, Attempts: result.Attempts}, nil
}

func (g *Guard) freeDestination(dest string) (string, error) {
	candidate := dest
	for i := 0; ; i++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("inspect destination: %w", err)
		}
		stamp := g.opts.Now().Format(timestampLayout)
		candidate = dest + "-" + stamp
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", candidate, i)
		}
	}
}

func (g *Guard) killLingering(ctx context.Context) {
	if g.opts.Runner == nil {
		return
	}
	for _, name := range g.opts.KillProcesses {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		binary, args := killCommand(name)
		// A non-zero exit usually just means no such process was running.
		if _, err := g.opts.Runner.Run(ctx, services.Command{Binary: binary, Args: args}); err != nil {
			g.logger.Debug("process termination skipped", logging.String("process", name), logging.Error(err))
		}
	}
}

func ensureNotWorkingDir(src string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(abs, cwd)
	if err != nil {
		return nil
	}
	if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
		return services.WithHint(
			services.Wrap(services.ErrValidation, "relocate", "precondition", "process working directory is inside "+abs, nil),
			"run shipit from outside the project folders",
		)
	}
	return nil
}
