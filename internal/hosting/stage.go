// Package hosting implements the two deploy stages. Each provider is linked
// on first contact (provisioning a uniquely named site when the folder is not
// yet linked) and then deployed to production.
package hosting

import (
	"context"
	"log/slog"

	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/stage"
	"shipit/internal/textutil"
)

// Provider is a hosting collaborator reached through its CLI.
type Provider interface {
	AuthCheck(ctx context.Context) error
	IsLinked(dir string) bool
	// Provision creates a site called name and returns the target Link expects.
	Provision(ctx context.Context, dir, name string) (string, error)
	Link(ctx context.Context, dir, target string) error
	Deploy(ctx context.Context, dir string) error
}

// Stage deploys a folder to one hosting provider.
type Stage struct {
	stage        record.Stage
	provider     Provider
	disambiguate func() string
	logger       *slog.Logger
}

// NewStage constructs a hosting stage bound to one of the host stage names.
func NewStage(name record.Stage, provider Provider, logger *slog.Logger) *Stage {
	return &Stage{
		stage:        name,
		provider:     provider,
		disambiguate: textutil.Disambiguator,
		logger:       logging.NewComponentLogger(logger, "hosting-stage"),
	}
}

// SetLogger routes stage logs through the folder-scoped logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "hosting-stage")
}

// Stage implements stage.Handler.
func (s *Stage) Stage() record.Stage { return s.stage }

// HealthCheck verifies the provider CLI is authenticated.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	name := string(s.stage)
	if s.provider == nil {
		return stage.Unhealthy(name, "hosting provider not configured")
	}
	if err := s.provider.AuthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

// Execute links the folder if needed and deploys it. Provisioning and link
// failures are logged and the deploy is attempted anyway; only the deploy
// result decides the stage outcome.
func (s *Stage) Execute(ctx context.Context, unit *stage.Unit) error {
	if unit == nil {
		return services.Wrap(services.ErrValidation, string(s.stage), "execute", "folder unit is nil", nil)
	}
	if !s.provider.IsLinked(unit.Path) {
		s.link(ctx, unit)
	}
	return s.provider.Deploy(ctx, unit.Path)
}

func (s *Stage) link(ctx context.Context, unit *stage.Unit) {
	name := textutil.WithSuffix(unit.Record.Identity, s.disambiguate())
	target, err := s.provider.Provision(ctx, unit.Path, name)
	if err != nil {
		logging.WarnWithContext(s.logger, "site provisioning failed; deploying without explicit link",
			"host_provision_failed",
			logging.String("site", name),
			logging.String(logging.FieldImpact, "provider may create or pick the target itself"),
			logging.Error(err),
		)
		return
	}
	if err := s.provider.Link(ctx, unit.Path, target); err != nil {
		logging.WarnWithContext(s.logger, "site link failed; deploying without explicit link",
			"host_link_failed",
			logging.String("site", name),
			logging.String(logging.FieldImpact, "provider may infer the target from the folder"),
			logging.Error(err),
		)
		return
	}
	s.logger.Info("linked folder to new site",
		logging.String(logging.FieldEventType, "host_linked"),
		logging.String("site", name),
	)
}
