package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RootDir     string `toml:"root_dir"`
	DoneDirName string `toml:"done_dir_name"`
	LogDir      string `toml:"log_dir"`
	HistoryDB   string `toml:"history_db"`
}

// Record controls the per-folder progress sidecar.
type Record struct {
	SidecarName string `toml:"sidecar_name"`
}

// GitHub contains configuration for the version-control publish stage.
type GitHub struct {
	Binary         string   `toml:"binary"`
	GitBinary      string   `toml:"git_binary"`
	Visibility     string   `toml:"visibility"`
	CommitMessage  string   `toml:"commit_message"`
	Branches       []string `toml:"branches"`
	CreateAttempts int      `toml:"create_attempts"`
}

// Vercel contains configuration for the first hosting provider.
type Vercel struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
}

// Netlify contains configuration for the second hosting provider.
type Netlify struct {
	Enabled    bool   `toml:"enabled"`
	Binary     string `toml:"binary"`
	PublishDir string `toml:"publish_dir"`
}

// Relocation controls how completed folders are moved out of the root.
type Relocation struct {
	Enabled           bool     `toml:"enabled"`
	Attempts          int      `toml:"attempts"`
	RetryDelaySeconds int      `toml:"retry_delay_seconds"`
	SettleDelaySecs   int      `toml:"settle_delay_seconds"`
	KillProcesses     []string `toml:"kill_processes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// History toggles the SQLite attempt ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for shipit.
//
// Configuration sections by subsystem:
//   - Paths: working root, completed-items directory, logs, history ledger
//   - Record: sidecar file name inside each project folder
//   - GitHub: repository creation and push
//   - Vercel / Netlify: hosting provider CLIs
//   - Relocation: retry and settle timing for moving finished folders
//   - Logging: log format, level, and rotation
//   - History: attempt ledger toggle
type Config struct {
	Paths      Paths      `toml:"paths"`
	Record     Record     `toml:"record"`
	GitHub     GitHub     `toml:"github"`
	Vercel     Vercel     `toml:"vercel"`
	Netlify    Netlify    `toml:"netlify"`
	Relocation Relocation `toml:"relocation"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shipit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shipit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SetRoot overrides the working root (used by the --root flag) and re-expands it.
func (c *Config) SetRoot(root string) error {
	expanded, err := expandPath(strings.TrimSpace(root))
	if err != nil {
		return fmt.Errorf("paths.root_dir: %w", err)
	}
	c.Paths.RootDir = expanded
	return nil
}

// DoneDir returns the absolute path of the completed-items directory.
func (c *Config) DoneDir() string {
	return filepath.Join(c.Paths.RootDir, c.Paths.DoneDirName)
}

// EnsureDirectories creates directories the CLI writes into. The working root
// itself is never created: a missing root is a batch-level error.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryDB) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RetryDelay returns the fixed delay between relocation attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Relocation.RetryDelaySeconds) * time.Second
}

// SettleDelay returns the pause before a relocation is first attempted.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Relocation.SettleDelaySecs) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
