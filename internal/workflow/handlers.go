package workflow

import (
	"log/slog"

	"shipit/internal/config"
	"shipit/internal/hosting"
	"shipit/internal/publish"
	"shipit/internal/record"
	"shipit/internal/services"
	"shipit/internal/services/github"
	"shipit/internal/services/netlify"
	"shipit/internal/services/vercel"
	"shipit/internal/stage"
)

// DefaultHandlers builds the three stage handlers from configuration, in
// execution order.
func DefaultHandlers(cfg *config.Config, runner services.Runner, logger *slog.Logger) []stage.Handler {
	gh := github.New(github.Options{
		GHBinary:      cfg.GitHub.Binary,
		GitBinary:     cfg.GitHub.GitBinary,
		Visibility:    cfg.GitHub.Visibility,
		CommitMessage: cfg.GitHub.CommitMessage,
		Branches:      cfg.GitHub.Branches,
	}, runner)
	handlers := []stage.Handler{
		publish.NewStage(gh, publish.Options{
			CreateAttempts: cfg.GitHub.CreateAttempts,
			IgnoreExtra:    []string{cfg.Record.SidecarName},
		}, logger),
	}

	if cfg.Vercel.Enabled {
		handlers = append(handlers, hosting.NewStage(record.StageHostA, vercel.New(cfg.Vercel.Binary, runner), logger))
	} else {
		handlers = append(handlers, hosting.NewDisabled(record.StageHostA))
	}
	if cfg.Netlify.Enabled {
		handlers = append(handlers, hosting.NewStage(record.StageHostB, netlify.New(cfg.Netlify.Binary, cfg.Netlify.PublishDir, runner), logger))
	} else {
		handlers = append(handlers, hosting.NewDisabled(record.StageHostB))
	}
	return handlers
}
