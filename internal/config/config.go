// Package config loads per-repository settings from .wt/config.yaml.
// Everything has a working default, so the file is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a repository.
type Config struct {
	Version int `yaml:"version"`

	// BaseBranch is the merge target for finished tasks. Empty means
	// auto-detect (main, then master, then the current branch).
	BaseBranch string `yaml:"base_branch,omitempty"`

	// WorktreeDir is where workspaces go, relative to the repo root.
	WorktreeDir string `yaml:"worktree_dir,omitempty"`

	Worker Worker `yaml:"worker"`
}

// Worker describes the agent command launched in each task window.
type Worker struct {
	Cmd  string   `yaml:"cmd,omitempty"`  // defaults to "claude"
	Args []string `yaml:"args,omitempty"` // extra CLI arguments
	// AutoAccept injects the skip-permissions flag for known CLI
	// agents even outside auto mode.
	AutoAccept bool `yaml:"auto_accept,omitempty"`
}

// EffectiveArgs returns the final args for the worker, injecting the
// auto-accept flag for known CLI tools when auto mode asks for it.
//
// Known tools and their flags:
//   - claude: --dangerously-skip-permissions
//   - gemini: --yolo
//   - codex:  --full-auto
//
// Users can always add these flags manually in args if they prefer.
func (w Worker) EffectiveArgs(auto bool) []string {
	args := make([]string, len(w.Args))
	copy(args, w.Args)

	if !auto && !w.AutoAccept {
		return args
	}

	switch w.Cmd {
	case "claude":
		if !containsAny(args, "--dangerously-skip-permissions", "--permission-mode") {
			args = appendFront(args, "--dangerously-skip-permissions")
		}
	case "gemini":
		if !containsAny(args, "-y", "--yolo") {
			args = appendFront(args, "--yolo")
		}
	case "codex":
		if !containsAny(args, "--full-auto", "--approval-mode") {
			args = appendFront(args, "--full-auto")
		}
	}
	return args
}

// Path returns the config file location for a repository.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, ".wt", "config.yaml")
}

// Load reads the config for a repository. A missing file yields the
// defaults.
func Load(repoRoot string) (*Config, error) {
	data, err := os.ReadFile(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config into the repository's .wt directory.
func Save(repoRoot string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := Path(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		WorktreeDir: ".worktrees",
		Worker:      Worker{Cmd: "claude"},
	}
}

func (c *Config) validate() error {
	if c.Worker.Cmd == "" {
		return fmt.Errorf("worker cmd must not be empty")
	}
	if filepath.IsAbs(c.WorktreeDir) {
		return fmt.Errorf("worktree_dir must be relative to the repo root, got %q", c.WorktreeDir)
	}
	return nil
}

// containsAny checks if any of the targets exist in the slice.
func containsAny(slice []string, targets ...string) bool {
	for _, s := range slice {
		for _, t := range targets {
			if s == t {
				return true
			}
		}
	}
	return false
}

// appendFront inserts a value at the beginning of a slice.
func appendFront(slice []string, val string) []string {
	return append([]string{val}, slice...)
}
