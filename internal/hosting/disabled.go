package hosting

import (
	"context"

	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/stage"
)

// Disabled is the handler for a provider turned off in configuration. Its
// stage never succeeds, so folders keep waiting for it instead of being
// relocated half-deployed.
type Disabled struct {
	stage record.Stage
}

// NewDisabled constructs a placeholder handler for name.
func NewDisabled(name record.Stage) *Disabled {
	return &Disabled{stage: name}
}

// Stage implements stage.Handler.
func (d *Disabled) Stage() record.Stage { return d.stage }

// HealthCheck always reports the provider as disabled.
func (d *Disabled) HealthCheck(context.Context) stage.Health {
	return stage.Unhealthy(string(d.stage), "provider disabled in configuration")
}

// Execute always fails.
func (d *Disabled) Execute(context.Context, *stage.Unit) error {
	return services.Wrap(services.ErrConfiguration, string(d.stage), "execute", "provider disabled in configuration", nil)
}
