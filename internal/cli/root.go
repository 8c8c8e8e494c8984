package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/amiller68/wt/internal/deps"
	"github.com/amiller68/wt/internal/git"
	"github.com/amiller68/wt/internal/session"
	"github.com/amiller68/wt/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wt",
	Short: "Fan coding agents out to git worktrees",
	Long: "wt — delegate tasks to coding agents, each in its own git worktree\n" +
		"and tmux window, and coordinate review, merge, and cleanup from one place.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(spawnCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(epicCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
}

// ExitCode maps an error to the process exit code, one per failure kind
// so scripts can branch on what went wrong.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, store.ErrTaskNotFound), errors.Is(err, store.ErrEpicNotFound):
		return 2
	case errors.Is(err, store.ErrDuplicateTask), errors.Is(err, store.ErrDuplicateEpic),
		errors.Is(err, git.ErrWorkspaceExists), errors.Is(err, session.ErrWindowExists):
		return 3
	case errors.Is(err, git.ErrUncommittedChanges):
		return 4
	case errors.Is(err, git.ErrMergeConflict):
		return 5
	case errors.Is(err, deps.ErrDependencyCycle):
		return 6
	case errors.Is(err, session.ErrSessionUnavailable):
		return 7
	case errors.Is(err, store.ErrStoreCorrupt):
		return 8
	case errors.Is(err, git.ErrNotARepo):
		return 9
	default:
		return 1
	}
}
