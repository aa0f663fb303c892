package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/relocate"
	"shipit/internal/services"
	"shipit/internal/stage"
	"shipit/internal/stageexec"
)

// processFolder runs one folder through its pending stages and relocation.
// It never panics and never returns an error: problems land in the report.
func (m *Manager) processFolder(ctx context.Context, health *healthCache, name string) (report FolderReport) {
	path := filepath.Join(m.cfg.Paths.RootDir, name)
	ctx = services.WithFolder(ctx, name)
	logger := logging.WithContext(ctx, m.logger)
	report = FolderReport{Folder: name, Path: path}

	defer func() {
		if r := recover(); r != nil {
			report.State = StateErroredRetained
			report.Err = fmt.Errorf("panic processing folder: %v", r)
			logger.Error("folder processing panicked; leaving folder in place",
				logging.String(logging.FieldEventType, "folder_panic"),
				logging.Alert("folder_panic"),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()

	rec, source, loadErr := m.store.Load(path)
	if source == record.SourceCorrupt {
		logging.WarnWithContext(logger, "sidecar unreadable; starting from a fresh record",
			"record_corrupt",
			logging.String(logging.FieldErrorHint, "inspect "+m.store.SidecarName()+" in the folder"),
			logging.String(logging.FieldImpact, "completed stages may run again"),
			logging.Error(loadErr),
		)
	}
	unit := &stage.Unit{Path: path, Name: name, Record: rec}
	report.Identity = rec.Identity

	if m.dryRun {
		report.State = stateFor(rec)
		report.Pending = rec.Pending()
		logger.Info("dry run",
			logging.String(logging.FieldIdentity, rec.Identity),
			logging.String("state", string(report.State)),
			logging.Any("pending", report.Pending),
		)
		return report
	}

	for _, handler := range m.handlers {
		outcome := stageexec.Run(ctx, stageexec.Options{
			Logger:    logger,
			Store:     m.store,
			Handler:   handler,
			Unit:      unit,
			Gate:      health.gate(handler),
			OnOutcome: m.recordAttempt,
		})
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Identity = unit.Record.Identity
	report.Pending = unit.Record.Pending()
	report.State = stateFor(unit.Record)
	if report.State != StateComplete {
		logger.Info("folder left in place; stages pending",
			logging.String(logging.FieldEventType, "folder_pending"),
			logging.String(logging.FieldIdentity, unit.Record.Identity),
			logging.Any("pending", report.Pending),
		)
		return report
	}
	if !m.relocate {
		return report
	}
	m.relocateFolder(ctx, logger, &report)
	return report
}

func (m *Manager) relocateFolder(ctx context.Context, logger *slog.Logger, report *FolderReport) {
	if err := m.sleep(ctx, m.cfg.SettleDelay()); err != nil {
		report.Err = err
		return
	}
	dest := filepath.Join(m.cfg.DoneDir(), report.Folder)
	result, err := m.relocator.Relocate(ctx, report.Path, dest)
	switch {
	case err == nil:
		report.State = StateRelocated
		report.Destination = result.Destination
		logger.Info("folder relocated",
			logging.String(logging.FieldEventType, "folder_relocated"),
			logging.String("destination", result.Destination),
			logging.Int("attempts", result.Attempts),
		)
	case errors.Is(err, relocate.ErrLocked):
		report.Err = err
		logger.Warn("folder still locked; relocation deferred to next run",
			logging.String(logging.FieldEventType, "relocation_deferred"),
			logging.String(logging.FieldErrorHint, "close programs using the folder and run again"),
			logging.String(logging.FieldImpact, "folder stays in the root"),
			logging.Error(err),
		)
	default:
		report.State = StateErroredRetained
		report.Err = err
		logger.Error("relocation failed; leaving folder in place",
			logging.String(logging.FieldEventType, "relocation_failed"),
			logging.Error(err),
		)
	}
}
