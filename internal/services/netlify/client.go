// Package netlify wraps the netlify CLI: site creation, linking by site id,
// and production deploys.
package netlify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"shipit/internal/services"
)

const stageName = "host_b"

// StateFile is where the CLI records the site a folder is linked to.
var StateFile = filepath.Join(".netlify", "state.json")

var siteIDPattern = regexp.MustCompile(`(?i)site[ _]?id["':\s]+([0-9a-f-]{8,})`)

// Client wraps netlify CLI interactions.
type Client struct {
	binary     string
	publishDir string
	runner     services.Runner
}

// New constructs a Netlify client. publishDir is passed to deploy and
// defaults to ".".
func New(binary, publishDir string, runner services.Runner) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = "netlify"
	}
	if strings.TrimSpace(publishDir) == "" {
		publishDir = "."
	}
	return &Client{binary: binary, publishDir: publishDir, runner: runner}
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// AuthCheck verifies the CLI is logged in.
func (c *Client) AuthCheck(ctx context.Context) error {
	out, err := c.run(ctx, "", "status")
	if err == nil && strings.Contains(strings.ToLower(out.Combined()), "not logged in") {
		err = errors.New("not logged in")
	}
	if err != nil {
		return services.WithHint(
			services.Wrap(services.ErrUnavailable, stageName, "status", strings.TrimSpace(out.Combined()), err),
			"run `netlify login`",
		)
	}
	return nil
}

// LinkedSiteID returns the site id recorded in dir's state file, or "".
func (c *Client) LinkedSiteID(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	if err != nil {
		return ""
	}
	var state struct {
		SiteID string `json:"siteId"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return ""
	}
	return strings.TrimSpace(state.SiteID)
}

// IsLinked reports whether dir is linked to a site.
func (c *Client) IsLinked(dir string) bool {
	return c.LinkedSiteID(dir) != ""
}

// CreateSite provisions a site named name and returns its identifier.
func (c *Client) CreateSite(ctx context.Context, dir, name string) (string, error) {
	out, err := c.run(ctx, dir, "sites:create", "--name", name, "--disable-linking", "--json")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageName, "sites:create", strings.TrimSpace(out.Combined()), err)
	}
	id := parseSiteID(out.Stdout)
	if id == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "sites:create", "no site id in output", nil)
	}
	return id, nil
}

// Provision creates the site and returns its id for Link.
func (c *Client) Provision(ctx context.Context, dir, name string) (string, error) {
	return c.CreateSite(ctx, dir, name)
}

// Link associates dir with siteID.
func (c *Client) Link(ctx context.Context, dir, siteID string) error {
	out, err := c.run(ctx, dir, "link", "--id", siteID)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "link", strings.TrimSpace(out.Combined()), err)
	}
	return nil
}

// Deploy publishes dir to production.
func (c *Client) Deploy(ctx context.Context, dir string) error {
	out, err := c.run(ctx, dir, "deploy", "--prod", "--dir", c.publishDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stageName, "deploy", strings.TrimSpace(out.Stderr), err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (services.Output, error) {
	return c.runner.Run(ctx, services.Command{Dir: dir, Binary: c.binary, Args: args})
}

// parseSiteID reads the id from the JSON payload, falling back to a pattern
// match when the CLI prints banners around it.
func parseSiteID(stdout string) string {
	var payload struct {
		ID     string `json:"id"`
		SiteID string `json:"site_id"`
	}
	trimmed := strings.TrimSpace(stdout)
	if start := strings.IndexByte(trimmed, '{'); start >= 0 {
		if end := strings.LastIndexByte(trimmed, '}'); end > start {
			if json.Unmarshal([]byte(trimmed[start:end+1]), &payload) == nil {
				if payload.SiteID != "" {
					return payload.SiteID
				}
				if payload.ID != "" {
					return payload.ID
				}
			}
		}
	}
	if m := siteIDPattern.FindStringSubmatch(stdout); m != nil {
		return m[1]
	}
	return ""
}
