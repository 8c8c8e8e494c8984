// Package brief writes the briefing a worker finds inside its workspace
// and reads back the status the worker reports. The contract is two files
// under .wt/ in the worktree: task.md tells the worker what to do,
// status.json is how it talks back.
package brief

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WorkerState is what the worker reports about itself in status.json.
type WorkerState string

const (
	StateWorking  WorkerState = "working"
	StateBlocked  WorkerState = "blocked"
	StateQuestion WorkerState = "question"
	StateDone     WorkerState = "done"
)

// Status is the worker-side status file (.wt/status.json).
type Status struct {
	Status    WorkerState `json:"status"`
	Message   string      `json:"message,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NeedsAttention reports whether the worker is waiting on a human.
func (s Status) NeedsAttention() bool {
	return s.Status == StateBlocked || s.Status == StateQuestion
}

// Briefing is everything the worker needs to start.
type Briefing struct {
	Task        string
	Issue       string
	Description string
	Context     string
}

// Render produces the task.md contents.
func (b Briefing) Render() string {
	var sb strings.Builder
	sb.WriteString("# Task: " + b.Task + "\n\n")
	if b.Issue != "" {
		sb.WriteString("## Issue\n\n" + b.Issue + "\n\n")
	}
	if b.Description != "" {
		sb.WriteString("## Description\n\n" + b.Description + "\n\n")
	}
	if b.Context != "" {
		sb.WriteString("## Context\n\n" + b.Context + "\n\n")
	}
	sb.WriteString("## Constraints\n\n")
	sb.WriteString("- Stay focused on this task\n")
	sb.WriteString("- Commit your work on the task branch; do not switch branches\n")
	sb.WriteString("- Update `.wt/status.json` when blocked or done\n")
	return sb.String()
}

// Write drops the briefing and an initial working status into the
// workspace, and keeps .wt/ out of version control.
func Write(workspacePath string, b Briefing) error {
	dir := filepath.Join(workspacePath, ".wt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create briefing directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "task.md"), []byte(b.Render()), 0644); err != nil {
		return fmt.Errorf("write task briefing: %w", err)
	}

	initial := Status{Status: StateWorking, UpdatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(initial, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize status: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "status.json"), data, 0644); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	return ensureIgnored(workspacePath)
}

// ReadStatus loads the worker-reported status from a workspace. Returns
// nil when the worker has not written one (or the workspace is gone).
func ReadStatus(workspacePath string) (*Status, error) {
	data, err := os.ReadFile(filepath.Join(workspacePath, ".wt", "status.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read status: %w", err)
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	return &s, nil
}

// ReadTask loads the briefing markdown, empty when absent.
func ReadTask(workspacePath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(workspacePath, ".wt", "task.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read task briefing: %w", err)
	}
	return string(data), nil
}

// ensureIgnored appends .wt/ to the workspace .gitignore once.
func ensureIgnored(workspacePath string) error {
	path := filepath.Join(workspacePath, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == ".wt/" {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	entry := ".wt/\n"
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		entry = "\n" + entry
	}
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}
	return nil
}
