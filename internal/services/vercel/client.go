// Package vercel wraps the vercel CLI for provisioning, linking, and
// production deploys of a project folder.
package vercel

import (
	"context"
	"path/filepath"
	"strings"

	"shipit/internal/fileutil"
	"shipit/internal/services"
)

const stageName = "host_a"

// LinkMarker is the file the CLI writes once a folder is linked to a project.
var LinkMarker = filepath.Join(".vercel", "project.json")

// Client wraps vercel CLI interactions.
type Client struct {
	binary string
	runner services.Runner
}

// New constructs a Vercel client.
func New(binary string, runner services.Runner) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = "vercel"
	}
	return &Client{binary: binary, runner: runner}
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// AuthCheck verifies the CLI has a logged-in account.
func (c *Client) AuthCheck(ctx context.Context) error {
	out, err := c.run(ctx, "", "whoami")
	if err != nil {
		return services.WithHint(
			services.Wrap(services.ErrUnavailable, stageName, "whoami", strings.TrimSpace(out.Combined()), err),
			"run `vercel login`",
		)
	}
	return nil
}

// IsLinked reports whether dir is already linked to a project.
func (c *Client) IsLinked(dir string) bool {
	ok, err := fileutil.Exists(filepath.Join(dir, LinkMarker))
	return err == nil && ok
}

// CreateProject provisions a new project named name.
func (c *Client) CreateProject(ctx context.Context, dir, name string) error {
	out, err := c.run(ctx, dir, "project", "add", name)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "project add", strings.TrimSpace(out.Combined()), err)
	}
	return nil
}

// Provision creates the project and returns the name Link expects.
func (c *Client) Provision(ctx context.Context, dir, name string) (string, error) {
	if err := c.CreateProject(ctx, dir, name); err != nil {
		return "", err
	}
	return name, nil
}

// Link associates dir with the project named name.
func (c *Client) Link(ctx context.Context, dir, name string) error {
	out, err := c.run(ctx, dir, "link", "--yes", "--project", name)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "link", strings.TrimSpace(out.Combined()), err)
	}
	return nil
}

// Deploy publishes dir to production.
func (c *Client) Deploy(ctx context.Context, dir string) error {
	out, err := c.run(ctx, dir, "deploy", "--prod", "--yes")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "deploy", lastLine(out.Combined()), err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (services.Output, error) {
	return c.runner.Run(ctx, services.Command{Dir: dir, Binary: c.binary, Args: args})
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
