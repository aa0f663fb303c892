package stage

import (
	"context"
	"log/slog"

	"shipit/internal/record"
)

// Unit is the per-folder handle a stage operates on. It lives for one pass
// over one folder and is never persisted itself; Record is.
type Unit struct {
	// Path is the absolute folder path. Every external command runs there.
	Path string
	// Name is the folder's base name as found on disk.
	Name   string
	Record record.ProjectRecord
}

// Handler describes the contract the stage runner needs from each stage.
type Handler interface {
	Stage() record.Stage
	Execute(context.Context, *Unit) error
	HealthCheck(context.Context) Health
}

// LoggerAware handlers receive a logger scoped to the folder and stage before
// Execute is called.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
