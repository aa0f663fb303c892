package workflow

import (
	"context"
	"log/slog"

	"shipit/internal/history"
	"shipit/internal/logging"
	"shipit/internal/services"
	"shipit/internal/stage"
	"shipit/internal/stageexec"
)

func (m *Manager) recordRunStart(ctx context.Context, logger *slog.Logger, summary Summary) {
	if m.ledger == nil {
		return
	}
	err := m.ledger.BeginRun(ctx, history.Run{
		ID:        summary.RunID,
		Root:      summary.Root,
		DryRun:    summary.DryRun,
		StartedAt: summary.Started,
	})
	if err != nil {
		m.disableLedger(logger, err)
	}
}

func (m *Manager) recordRunFinish(ctx context.Context, logger *slog.Logger, summary Summary) {
	if m.ledger == nil {
		return
	}
	if err := m.ledger.FinishRun(ctx, summary.RunID, countsOf(summary)); err != nil {
		m.disableLedger(logger, err)
	}
}

func (m *Manager) recordAttempt(ctx context.Context, unit *stage.Unit, outcome stageexec.Outcome) {
	if m.ledger == nil || outcome.Status == stageexec.StatusSkipped {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	attempt := history.Attempt{
		RunID:    runID,
		Folder:   unit.Name,
		Identity: unit.Record.Identity,
		Stage:    string(outcome.Stage),
		Status:   string(outcome.Status),
		Duration: outcome.Duration,
	}
	if outcome.Err != nil {
		attempt.ErrorKind = string(services.KindOf(outcome.Err))
		attempt.ErrorMessage = outcome.Message()
	}
	if err := m.ledger.RecordAttempt(ctx, attempt); err != nil {
		m.disableLedger(logging.WithContext(ctx, m.logger), err)
	}
}

func (m *Manager) recordFolder(ctx context.Context, logger *slog.Logger, runID string, report FolderReport) {
	if m.ledger == nil {
		return
	}
	result := history.FolderResult{
		RunID:       runID,
		Folder:      report.Folder,
		Identity:    report.Identity,
		State:       string(report.State),
		Destination: report.Destination,
	}
	if report.Err != nil {
		result.Detail = report.Err.Error()
	}
	if err := m.ledger.RecordFolder(ctx, result); err != nil {
		m.disableLedger(logger, err)
	}
}

// disableLedger stops history writes for the rest of the batch after the
// first failure.
func (m *Manager) disableLedger(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "history ledger write failed; disabling history for this batch",
		"history_write_failed",
		logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
		logging.String(logging.FieldImpact, "this batch will be missing from `shipit history`"),
		logging.Error(err),
	)
	m.ledger = nil
}

func countsOf(summary Summary) history.Counts {
	return history.Counts{
		Total:     len(summary.Folders),
		Relocated: summary.Count(StateRelocated),
		Complete:  summary.Count(StateComplete),
		Partial:   summary.Count(StatePartiallyDone),
		Pending:   summary.Count(StatePending),
		Errored:   summary.Count(StateErroredRetained),
	}
}
