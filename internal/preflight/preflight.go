package preflight

import (
	"context"
	"fmt"
	"runtime"

	"shipit/internal/config"
	"shipit/internal/deps"
	"shipit/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and provider checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, handlers []stage.Handler) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Working root", cfg.Paths.RootDir)}
	if exists, _ := dirExists(cfg.DoneDir()); exists {
		results = append(results, CheckDirectoryAccess("Completed directory", cfg.DoneDir()))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckStages(ctx, handlers)...)
	return results
}

// CheckStages runs each handler's health check.
func CheckStages(ctx context.Context, handlers []stage.Handler) []Result {
	results := make([]Result, 0, len(handlers))
	for _, handler := range handlers {
		health := handler.HealthCheck(ctx)
		detail := health.Detail
		if health.Ready {
			detail = "authenticated"
		}
		results = append(results, Result{
			Name:   fmt.Sprintf("%s (%s)", handler.Stage().Label(), handler.Stage()),
			Passed: health.Ready,
			Detail: detail,
		})
	}
	return results
}

// Requirements lists the CLIs needed for cfg.
func Requirements(cfg *config.Config) []deps.Requirement {
	version := []string{"--version"}
	reqs := []deps.Requirement{
		{Name: "git", Command: cfg.GitHub.GitBinary, Description: "Local commits and pushes", VersionArgs: version},
		{Name: "GitHub CLI", Command: cfg.GitHub.Binary, Description: "Repository creation", VersionArgs: version},
	}
	if cfg.Vercel.Enabled {
		reqs = append(reqs, deps.Requirement{Name: "Vercel CLI", Command: cfg.Vercel.Binary, Description: "Host A deploys", VersionArgs: version})
	}
	if cfg.Netlify.Enabled {
		reqs = append(reqs, deps.Requirement{Name: "Netlify CLI", Command: cfg.Netlify.Binary, Description: "Host B deploys", VersionArgs: version})
	}
	if len(cfg.Relocation.KillProcesses) > 0 {
		killer := "pkill"
		if runtime.GOOS == "windows" {
			killer = "taskkill"
		}
		reqs = append(reqs, deps.Requirement{
			Name:        killer,
			Command:     killer,
			Description: "Stops lingering processes that lock finished folders",
			Optional:    true,
		})
	}
	return reqs
}
