package github

import (
	"context"
	"path/filepath"
	"strings"

	"shipit/internal/fileutil"
	"shipit/internal/services"
)

const stageName = "version_control"

// Options configures the client.
type Options struct {
	GHBinary      string
	GitBinary     string
	Visibility    string
	CommitMessage string
	Branches      []string
}

// Client wraps gh/git CLI interactions.
type Client struct {
	opts   Options
	runner services.Runner
}

// New constructs a GitHub client.
func New(opts Options, runner services.Runner) *Client {
	if strings.TrimSpace(opts.GHBinary) == "" {
		opts.GHBinary = "gh"
	}
	if strings.TrimSpace(opts.GitBinary) == "" {
		opts.GitBinary = "git"
	}
	if opts.Visibility == "" {
		opts.Visibility = "private"
	}
	if opts.CommitMessage == "" {
		opts.CommitMessage = "Initial commit"
	}
	if len(opts.Branches) == 0 {
		opts.Branches = []string{"main", "master"}
	}
	return &Client{opts: opts, runner: runner}
}

// Binaries lists the executables this client invokes.
func (c *Client) Binaries() []string {
	return []string{c.opts.GHBinary, c.opts.GitBinary}
}

// AuthCheck verifies gh has an authenticated session.
func (c *Client) AuthCheck(ctx context.Context) error {
	out, err := c.gh(ctx, "", "auth", "status")
	if err != nil {
		return services.WithHint(
			services.Wrap(services.ErrUnavailable, stageName, "auth status", firstLine(out.Combined()), err),
			"run `gh auth login`",
		)
	}
	return nil
}

// EnsureRepository initializes a git repository directly in dir when none exists.
// A repository belonging to a parent directory does not count.
func (c *Client) EnsureRepository(ctx context.Context, dir string) error {
	exists, err := fileutil.Exists(filepath.Join(dir, ".git"))
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "inspect repository", "", err)
	}
	if exists {
		return nil
	}
	if out, err := c.git(ctx, dir, "init", "-b", c.opts.Branches[0]); err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "git init", firstLine(out.Combined()), err)
	}
	return nil
}

// CommitAll stages every change and commits it. It reports whether a commit
// was created; a clean tree is not an error.
func (c *Client) CommitAll(ctx context.Context, dir string) (bool, error) {
	if out, err := c.git(ctx, dir, "add", "-A"); err != nil {
		return false, services.Wrap(services.ErrExternalTool, stageName, "git add", firstLine(out.Combined()), err)
	}
	status, err := c.git(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, services.Wrap(services.ErrExternalTool, stageName, "git status", firstLine(status.Combined()), err)
	}
	if strings.TrimSpace(status.Stdout) == "" {
		return false, nil
	}
	if out, err := c.git(ctx, dir, "commit", "-m", c.opts.CommitMessage); err != nil {
		return false, services.Wrap(services.ErrExternalTool, stageName, "git commit", firstLine(out.Combined()), err)
	}
	return true, nil
}

// HasRemote reports whether dir already has an origin remote.
func (c *Client) HasRemote(ctx context.Context, dir string) bool {
	out, err := c.git(ctx, dir, "remote", "get-url", "origin")
	return err == nil && strings.TrimSpace(out.Stdout) != ""
}

// Create creates a remote repository named name from dir and pushes to it.
// Errors are tagged services.ErrNameTaken when the name belongs to another
// repository and services.ErrAlreadyLinked when dir already has an origin.
func (c *Client) Create(ctx context.Context, dir, name string) error {
	out, err := c.gh(ctx, dir, "repo", "create", name,
		"--"+c.opts.Visibility,
		"--source", ".",
		"--remote", "origin",
		"--push",
	)
	if err == nil {
		return nil
	}
	text := out.Combined()
	switch {
	case isNameTaken(text):
		return services.Wrap(services.ErrNameTaken, stageName, "gh repo create", "name "+name+" already exists", err)
	case isAlreadyLinked(text):
		return services.Wrap(services.ErrAlreadyLinked, stageName, "gh repo create", "origin remote already configured", err)
	default:
		return services.Wrap(services.ErrExternalTool, stageName, "gh repo create", firstLine(text), err)
	}
}

// Push publishes local commits to origin, trying each configured branch name
// in order. The first successful push wins.
func (c *Client) Push(ctx context.Context, dir string) error {
	var lastErr error
	var lastOut services.Output
	for _, branch := range c.opts.Branches {
		out, err := c.git(ctx, dir, "push", "-u", "origin", branch)
		if err == nil {
			return nil
		}
		lastErr, lastOut = err, out
	}
	return services.Wrap(services.ErrExternalTool, stageName, "git push",
		"push failed for branches "+strings.Join(c.opts.Branches, ", ")+": "+firstLine(lastOut.Combined()), lastErr)
}

func (c *Client) gh(ctx context.Context, dir string, args ...string) (services.Output, error) {
	return c.runner.Run(ctx, services.Command{Dir: dir, Binary: c.opts.GHBinary, Args: args})
}

func (c *Client) git(ctx context.Context, dir string, args ...string) (services.Output, error) {
	return c.runner.Run(ctx, services.Command{Dir: dir, Binary: c.opts.GitBinary, Args: args})
}

func isNameTaken(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "name already exists")
}

func isAlreadyLinked(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "remote origin already exists") ||
		strings.Contains(lower, `unable to add remote "origin"`)
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
