package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateRelocation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	name := c.Paths.DoneDirName
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("paths.done_dir_name must be a plain directory name, got %q", name)
	}
	sidecar := c.Record.SidecarName
	if sidecar != filepath.Base(sidecar) || sidecar == "." || sidecar == ".." {
		return fmt.Errorf("record.sidecar_name must be a plain file name, got %q", sidecar)
	}
	return nil
}

func (c *Config) validateGitHub() error {
	switch c.GitHub.Visibility {
	case "private", "public", "internal":
	default:
		return fmt.Errorf("github.visibility must be private, public, or internal, got %q", c.GitHub.Visibility)
	}
	if c.GitHub.CreateAttempts <= 0 {
		return errors.New("github.create_attempts must be positive")
	}
	return nil
}

func (c *Config) validateRelocation() error {
	if c.Relocation.Attempts <= 0 {
		return errors.New("relocation.attempts must be positive")
	}
	if c.Relocation.RetryDelaySeconds < 0 {
		return errors.New("relocation.retry_delay_seconds must not be negative")
	}
	if c.Relocation.SettleDelaySecs < 0 {
		return errors.New("relocation.settle_delay_seconds must not be negative")
	}
	return nil
}
