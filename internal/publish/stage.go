package publish

import (
	"context"
	"errors"
	"log/slog"

	"shipit/internal/ignorefile"
	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/retry"
	"shipit/internal/services"
	"shipit/internal/stage"
	"shipit/internal/textutil"
)

const defaultCreateAttempts = 5

// Host is the version-control collaborator used by the stage.
type Host interface {
	AuthCheck(ctx context.Context) error
	EnsureRepository(ctx context.Context, dir string) error
	CommitAll(ctx context.Context, dir string) (bool, error)
	HasRemote(ctx context.Context, dir string) bool
	Create(ctx context.Context, dir, name string) error
	Push(ctx context.Context, dir string) error
}

// Options tunes the stage.
type Options struct {
	// CreateAttempts bounds creation attempts across name collisions.
	CreateAttempts int
	// IgnoreExtra lines are appended to a freshly created ignore file.
	IgnoreExtra []string
	// Suffix produces the collision suffix; defaults to textutil.NumericSuffix.
	Suffix func() string
}

// Stage publishes a folder to the version-control host.
type Stage struct {
	host   Host
	opts   Options
	logger *slog.Logger
}

// NewStage constructs the version-control stage.
func NewStage(host Host, opts Options, logger *slog.Logger) *Stage {
	if opts.CreateAttempts <= 0 {
		opts.CreateAttempts = defaultCreateAttempts
	}
	if opts.Suffix == nil {
		opts.Suffix = textutil.NumericSuffix
	}
	return &Stage{host: host, opts: opts, logger: logging.NewComponentLogger(logger, "publish-stage")}
}

// SetLogger routes stage logs through the folder-scoped logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "publish-stage")
}

// Stage implements stage.Handler.
func (s *Stage) Stage() record.Stage { return record.StageVersionControl }

// HealthCheck verifies the host CLI is authenticated.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	name := string(record.StageVersionControl)
	if s.host == nil {
		return stage.Unhealthy(name, "version-control client not configured")
	}
	if err := s.host.AuthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

// Execute publishes unit. On success unit.Record.Identity holds the name the
// remote was created under; on failure it is left as it was.
func (s *Stage) Execute(ctx context.Context, unit *stage.Unit) error {
	if unit == nil {
		return services.Wrap(services.ErrValidation, "publish", "execute", "folder unit is nil", nil)
	}
	dir := unit.Path

	created, err := ignorefile.Ensure(dir, s.opts.IgnoreExtra...)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "ensure ignore file", "", err)
	}
	if created {
		s.logger.Debug("created ignore file", logging.String("path", dir))
	}

	if err := s.host.EnsureRepository(ctx, dir); err != nil {
		return err
	}
	if _, err := s.host.CommitAll(ctx, dir); err != nil {
		return err
	}

	if s.host.HasRemote(ctx, dir) {
		s.logger.Info("remote already configured; pushing", logging.String(logging.FieldEventType, "publish_push_existing"))
		return s.host.Push(ctx, dir)
	}

	return s.create(ctx, unit)
}

func (s *Stage) create(ctx context.Context, unit *stage.Unit) error {
	base := unit.Record.Identity
	linked := false
	result := retry.Do(ctx, retry.Policy{
		Attempts: s.opts.CreateAttempts,
		Retryable: func(err error) bool {
			return errors.Is(err, services.ErrNameTaken)
		},
		OnRetry: func(attempt int, err error) {
			s.logger.Info("remote name taken; retrying with suffix",
				logging.String(logging.FieldEventType, "publish_name_collision"),
				logging.String(logging.FieldIdentity, unit.Record.Identity),
				logging.Int("attempt", attempt),
			)
		},
	}, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			if err := unit.Record.SetIdentity(textutil.WithSuffix(base, s.opts.Suffix())); err != nil {
				return err
			}
		}
		err := s.host.Create(ctx, unit.Path, unit.Record.Identity)
		if errors.Is(err, services.ErrAlreadyLinked) {
			linked = true
			return nil
		}
		return err
	})
	if result.Err != nil {
		unit.Record.Identity = base
		if errors.Is(result.Err, retry.ErrExhausted) {
			return services.Wrap(services.ErrNameTaken, "publish", "create remote",
				"every candidate name was taken", result.Err)
		}
		return result.Err
	}
	if linked {
		s.logger.Info("folder already linked to a remote; pushing", logging.String(logging.FieldEventType, "publish_push_existing"))
		return s.host.Push(ctx, unit.Path)
	}
	if unit.Record.Identity != base {
		s.logger.Info("published under suffixed identity",
			logging.String(logging.FieldIdentity, unit.Record.Identity),
			logging.String("requested", base),
		)
	}
	return nil
}
