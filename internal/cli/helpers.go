package cli

import (
	"fmt"
	"os"

	"github.com/amiller68/wt/internal/config"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/history"
	"github.com/amiller68/wt/internal/orchestrator"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

// mustCoordinator wires up a coordinator for the repository containing
// the working directory.
func mustCoordinator() (*orchestrator.Coordinator, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	provider, err := git.NewExecProvider(wd, "")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(provider.RepoRoot())
	if err != nil {
		return nil, nil, err
	}
	if cfg.WorktreeDir != "" && cfg.WorktreeDir != ".worktrees" {
		if provider, err = git.NewExecProvider(wd, cfg.WorktreeDir); err != nil {
			return nil, nil, err
		}
	}

	s, err := store.New(provider.RepoRoot())
	if err != nil {
		return nil, nil, err
	}
	sessions, err := session.NewTmux()
	if err != nil {
		return nil, nil, err
	}

	// History is best-effort; a broken log never blocks a command.
	var cleanup func()
	log, err := history.Open()
	if err != nil {
		log = nil
		cleanup = func() {}
	} else {
		cleanup = func() { log.Close() }
	}

	return orchestrator.New(s, provider, sessions, cfg, log), cleanup, nil
}

func statusColor(s string) string {
	switch s {
	case "running", "working", "in_progress":
		return colorGreen
	case "blocked", "question":
		return colorRed
	case "exited", "no window", "no session":
		return colorDim
	case "completed", "done":
		return colorBlue
	default:
		return colorWhite
	}
}
