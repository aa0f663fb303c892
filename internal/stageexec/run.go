package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/stage"
)

// Status is the result class of one stage invocation.
type Status string

const (
	// StatusSkipped means the stage flag was already true; nothing ran.
	StatusSkipped Status = "skipped"
	// StatusSucceeded means the stage ran and its flag was persisted.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the stage was not completed; the flag stays false.
	StatusFailed Status = "failed"
)

// Outcome is the typed result of one stage for one folder. Failures are
// values, never panics or propagated errors.
type Outcome struct {
	Stage    record.Stage
	Status   Status
	Err      error
	Duration time.Duration
}

// Done reports whether the stage is satisfied after this invocation.
func (o Outcome) Done() bool {
	return o.Status == StatusSkipped || o.Status == StatusSucceeded
}

// Message returns the failure diagnostic, or "".
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	details := services.Details(o.Err)
	if msg := strings.TrimSpace(details.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(o.Err.Error())
}

// Options controls one stage execution.
type Options struct {
	Logger  *slog.Logger
	Store   *record.Store
	Handler stage.Handler
	Unit    *stage.Unit
	// Gate, when set, is consulted before executing. An unready stage fails
	// without invoking its collaborator.
	Gate func(context.Context) stage.Health
	// OnOutcome observes every outcome (history ledger).
	OnOutcome func(context.Context, *stage.Unit, Outcome)
}

// Run executes a stage and persists its flag on success. The stage's own flag
// being true short-circuits to StatusSkipped without touching the handler.
func Run(ctx context.Context, opts Options) Outcome {
	outcome := run(ctx, opts)
	if opts.OnOutcome != nil && opts.Unit != nil {
		opts.OnOutcome(ctx, opts.Unit, outcome)
	}
	return outcome
}

func run(ctx context.Context, opts Options) Outcome {
	if opts.Handler == nil {
		return Outcome{Status: StatusFailed, Err: services.Wrap(services.ErrConfiguration, "stageexec", "run", "stage handler unavailable", nil)}
	}
	name := opts.Handler.Stage()
	if opts.Store == nil || opts.Unit == nil {
		return Outcome{Stage: name, Status: StatusFailed, Err: services.Wrap(services.ErrConfiguration, string(name), "run", "record store and folder unit are required", nil)}
	}
	unit := opts.Unit

	stageCtx := services.WithStage(ctx, string(name))
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	if unit.Record.Done(name) {
		stageLogger.Debug("stage already complete", logging.String(logging.FieldEventType, "stage_skip"))
		return Outcome{Stage: name, Status: StatusSkipped}
	}

	if opts.Gate != nil {
		if health := opts.Gate(stageCtx); !health.Ready {
			err := services.Wrap(services.ErrUnavailable, string(name), "health check", health.Detail, nil)
			return handleFailure(stageLogger, name, 0, err)
		}
	}

	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldIdentity, unit.Record.Identity),
	)

	started := time.Now()
	if err := opts.Handler.Execute(stageCtx, unit); err != nil {
		return handleFailure(stageLogger, name, time.Since(started), err)
	}
	elapsed := time.Since(started)

	previous := unit.Record
	if err := unit.Record.MarkDone(name); err != nil {
		unit.Record = previous
		return handleFailure(stageLogger, name, elapsed, err)
	}
	saved, err := opts.Store.Save(unit.Path, unit.Record)
	if err != nil {
		unit.Record = previous
		return handleFailure(stageLogger, name, elapsed, fmt.Errorf("persist stage result: %w", err))
	}
	unit.Record = saved

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String(logging.FieldIdentity, unit.Record.Identity),
		logging.Duration("stage_duration", elapsed),
	)
	return Outcome{Stage: name, Status: StatusSucceeded, Duration: elapsed}
}

func handleFailure(logger *slog.Logger, name record.Stage, elapsed time.Duration, stageErr error) Outcome {
	outcome := Outcome{Stage: name, Status: StatusFailed, Err: stageErr, Duration: elapsed}
	details := services.Details(stageErr)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.String("error_message", outcome.Message()),
		logging.Error(stageErr),
	}
	if details.Operation != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorOperation, details.Operation))
	}
	if details.Hint != "" {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, details.Hint))
	}
	logger.Error("stage failed; will retry next run", logging.Args(attrs...)...)
	return outcome
}
