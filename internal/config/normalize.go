package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRecord()
	c.normalizeGitHub()
	c.normalizeProviders()
	c.normalizeRelocation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SHIPIT_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.RootDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.RootDir) == "" {
		c.Paths.RootDir = defaultRootDir
	}
	var err error
	if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
		return fmt.Errorf("paths.root_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	c.Paths.DoneDirName = strings.TrimSpace(c.Paths.DoneDirName)
	if c.Paths.DoneDirName == "" {
		c.Paths.DoneDirName = defaultDoneDirName
	}
	return nil
}

func (c *Config) normalizeRecord() {
	c.Record.SidecarName = strings.TrimSpace(c.Record.SidecarName)
	if c.Record.SidecarName == "" {
		c.Record.SidecarName = defaultSidecarName
	}
}

func (c *Config) normalizeGitHub() {
	c.GitHub.Binary = strings.TrimSpace(c.GitHub.Binary)
	if c.GitHub.Binary == "" {
		c.GitHub.Binary = defaultGitHubBinary
	}
	c.GitHub.GitBinary = strings.TrimSpace(c.GitHub.GitBinary)
	if c.GitHub.GitBinary == "" {
		c.GitHub.GitBinary = defaultGitBinary
	}
	c.GitHub.Visibility = strings.ToLower(strings.TrimSpace(c.GitHub.Visibility))
	if c.GitHub.Visibility == "" {
		c.GitHub.Visibility = defaultVisibility
	}
	c.GitHub.CommitMessage = strings.TrimSpace(c.GitHub.CommitMessage)
	if c.GitHub.CommitMessage == "" {
		c.GitHub.CommitMessage = defaultCommitMessage
	}
	branches := make([]string, 0, len(c.GitHub.Branches))
	for _, branch := range c.GitHub.Branches {
		if branch = strings.TrimSpace(branch); branch != "" {
			branches = append(branches, branch)
		}
	}
	if len(branches) == 0 {
		branches = []string{defaultGitHubBranchPrimary, defaultGitHubBranchLegacy}
	}
	c.GitHub.Branches = branches
}

func (c *Config) normalizeProviders() {
	c.Vercel.Binary = strings.TrimSpace(c.Vercel.Binary)
	if c.Vercel.Binary == "" {
		c.Vercel.Binary = defaultVercelBinary
	}
	c.Netlify.Binary = strings.TrimSpace(c.Netlify.Binary)
	if c.Netlify.Binary == "" {
		c.Netlify.Binary = defaultNetlifyBinary
	}
	c.Netlify.PublishDir = strings.TrimSpace(c.Netlify.PublishDir)
	if c.Netlify.PublishDir == "" {
		c.Netlify.PublishDir = defaultNetlifyPublishDir
	}
}

func (c *Config) normalizeRelocation() {
	names := make([]string, 0, len(c.Relocation.KillProcesses))
	for _, name := range c.Relocation.KillProcesses {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	c.Relocation.KillProcesses = names
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
