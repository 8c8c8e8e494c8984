package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Worker.Cmd != "claude" {
		t.Errorf("expected default worker claude, got %q", cfg.Worker.Cmd)
	}
	if cfg.WorktreeDir != ".worktrees" {
		t.Errorf("expected default worktree dir, got %q", cfg.WorktreeDir)
	}
	if cfg.BaseBranch != "" {
		t.Errorf("expected empty base branch (auto-detect), got %q", cfg.BaseBranch)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.BaseBranch = "develop"
	cfg.Worker = Worker{Cmd: "gemini", Args: []string{"--model", "pro"}, AutoAccept: true}

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.BaseBranch != "develop" {
		t.Errorf("base branch = %q", loaded.BaseBranch)
	}
	if loaded.Worker.Cmd != "gemini" || !loaded.Worker.AutoAccept {
		t.Errorf("worker not preserved: %+v", loaded.Worker)
	}
	if len(loaded.Worker.Args) != 2 {
		t.Errorf("worker args not preserved: %v", loaded.Worker.Args)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".wt"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(Path(root), []byte("base_branch: develop\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseBranch != "develop" {
		t.Errorf("base branch = %q", cfg.BaseBranch)
	}
	if cfg.Worker.Cmd != "claude" {
		t.Errorf("expected default worker kept, got %q", cfg.Worker.Cmd)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".wt"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := os.WriteFile(Path(root), []byte("worktree_dir: /absolute/path\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Error("expected error for absolute worktree_dir")
	}
}

func TestEffectiveArgs(t *testing.T) {
	cases := []struct {
		name   string
		worker Worker
		auto   bool
		want   []string
	}{
		{
			"claude auto injects skip-permissions",
			Worker{Cmd: "claude"},
			true,
			[]string{"--dangerously-skip-permissions"},
		},
		{
			"claude interactive stays clean",
			Worker{Cmd: "claude"},
			false,
			[]string{},
		},
		{
			"auto_accept applies without auto flag",
			Worker{Cmd: "claude", AutoAccept: true},
			false,
			[]string{"--dangerously-skip-permissions"},
		},
		{
			"no double injection",
			Worker{Cmd: "claude", Args: []string{"--dangerously-skip-permissions"}},
			true,
			[]string{"--dangerously-skip-permissions"},
		},
		{
			"gemini auto",
			Worker{Cmd: "gemini"},
			true,
			[]string{"--yolo"},
		},
		{
			"codex auto",
			Worker{Cmd: "codex"},
			true,
			[]string{"--full-auto"},
		},
		{
			"unknown tool untouched",
			Worker{Cmd: "my-agent", Args: []string{"--foo"}},
			true,
			[]string{"--foo"},
		},
	}

	for _, c := range cases {
		got := c.worker.EffectiveArgs(c.auto)
		if len(got) != len(c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: got %v, want %v", c.name, got, c.want)
				break
			}
		}
	}
}
