package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shipit/internal/config"
	"shipit/internal/history"
	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/relocate"
	"shipit/internal/retry"
	"shipit/internal/services"
	"shipit/internal/stage"
	"shipit/internal/stageexec"
)

// LockFileName is created in the root while a batch runs.
const LockFileName = ".shipit.lock"

// ErrBatchRunning is returned when another batch holds the root lock.
var ErrBatchRunning = errors.New("another batch is already running in this root")

// Relocator moves a completed folder out of the root.
type Relocator interface {
	Relocate(ctx context.Context, src, dest string) (relocate.Result, error)
}

// Ledger records batch history. *history.Store satisfies it.
type Ledger interface {
	BeginRun(ctx context.Context, run history.Run) error
	FinishRun(ctx context.Context, runID string, counts history.Counts) error
	RecordAttempt(ctx context.Context, attempt history.Attempt) error
	RecordFolder(ctx context.Context, folder history.FolderResult) error
}

// Manager runs batches over the working root.
type Manager struct {
	cfg       *config.Config
	store     *record.Store
	handlers  []stage.Handler
	relocator Relocator
	ledger    Ledger
	logger    *slog.Logger
	sleep     retry.Sleeper

	dryRun   bool
	relocate bool
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithLedger records runs and attempts in ledger.
func WithLedger(ledger Ledger) Option {
	return func(m *Manager) { m.ledger = ledger }
}

// WithRelocator overrides the relocation guard.
func WithRelocator(r Relocator) Option {
	return func(m *Manager) { m.relocator = r }
}

// WithSleeper overrides the settle-delay wait (tests).
func WithSleeper(sleep retry.Sleeper) Option {
	return func(m *Manager) { m.sleep = sleep }
}

// WithDryRun reports what each folder still needs without invoking anything.
func WithDryRun(enabled bool) Option {
	return func(m *Manager) { m.dryRun = enabled }
}

// WithRelocation toggles moving completed folders.
func WithRelocation(enabled bool) Option {
	return func(m *Manager) { m.relocate = enabled }
}

// NewManager constructs a Manager. handlers must be given in execution order.
func NewManager(cfg *config.Config, handlers []stage.Handler, runner services.Runner, logger *slog.Logger, opts ...Option) *Manager {
	logger = logging.NewComponentLogger(logger, "workflow")
	m := &Manager{
		cfg:      cfg,
		store:    record.NewStore(cfg.Record.SidecarName),
		handlers: handlers,
		logger:   logger,
		sleep:    retry.SleepContext,
		relocate: cfg.Relocation.Enabled,
		relocator: relocate.New(relocate.Options{
			Attempts:      cfg.Relocation.Attempts,
			Delay:         cfg.RetryDelay(),
			KillProcesses: cfg.Relocation.KillProcesses,
			Runner:        runner,
			Logger:        logger,
		}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store exposes the record store used for sidecars.
func (m *Manager) Store() *record.Store {
	return m.store
}

// Run processes every candidate folder once. It fails only when the root is
// missing or another batch is running; per-folder problems are reported in
// the Summary.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	root := m.cfg.Paths.RootDir
	info, err := os.Stat(root)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "open root", root, err)
	}
	if !info.IsDir() {
		return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "open root", root+" is not a directory", nil)
	}

	lock := flock.New(filepath.Join(root, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire root lock: %w", err)
	}
	if !locked {
		return Summary{}, ErrBatchRunning
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	summary := Summary{
		RunID:   uuid.NewString(),
		Root:    root,
		DryRun:  m.dryRun,
		Started: time.Now(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, m.logger)

	names, err := Enumerate(root, m.cfg.Paths.DoneDirName)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "enumerate", root, err)
	}
	if !m.dryRun && m.relocate {
		if err := os.MkdirAll(m.cfg.DoneDir(), 0o755); err != nil {
			return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "create done dir", m.cfg.DoneDir(), err)
		}
	}

	m.recordRunStart(ctx, logger, summary)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String("root", root),
		logging.Int("folders", len(names)),
		logging.Bool("dry_run", m.dryRun),
	)

	health := newHealthCache()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch interrupted", logging.Error(err))
			break
		}
		report := m.processFolder(ctx, health, name)
		summary.Folders = append(summary.Folders, report)
		m.recordFolder(ctx, logger, summary.RunID, report)
	}

	summary.Finished = time.Now()
	m.recordRunFinish(ctx, logger, summary)
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("relocated", summary.Count(StateRelocated)),
		logging.Int("complete", summary.Count(StateComplete)),
		logging.Int("partially_done", summary.Count(StatePartiallyDone)),
		logging.Int("pending", summary.Count(StatePending)),
		logging.Int("errored", summary.Count(StateErroredRetained)),
		logging.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary, nil
}
