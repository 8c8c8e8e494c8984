package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amiller68/wt/internal/orchestrator"
	"github.com/amiller68/wt/internal/store"
)

var (
	spawnContext   string
	spawnIssue     string
	spawnBlockedBy []string
	spawnAuto      bool
)

var spawnCmd = &cobra.Command{
	Use:   "spawn [name]",
	Short: "Start a task in its own worktree and window",
	Long: `Creates a worktree on a new branch named after the task, writes the
worker briefing into it, and opens a tmux window with the agent running.

Example:
  wt spawn auth/login -c "Add the login endpoint" --issue GH-42`,
	Args: cobra.ExactArgs(1),
	RunE: runSpawn,
}

func init() {
	spawnCmd.Flags().StringVarP(&spawnContext, "context", "c", "", "task description passed to the worker")
	spawnCmd.Flags().StringVar(&spawnIssue, "issue", "", "issue reference recorded in the briefing")
	spawnCmd.Flags().StringSliceVar(&spawnBlockedBy, "blocked-by", nil, "tasks that must merge before this one starts")
	spawnCmd.Flags().BoolVar(&spawnAuto, "auto", false, "launch the worker non-interactively with permissions skipped")
}

func runSpawn(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	task, err := c.Spawn(orchestrator.SpawnRequest{
		Name:      args[0],
		Context:   spawnContext,
		Issue:     spawnIssue,
		BlockedBy: spawnBlockedBy,
		Auto:      spawnAuto,
	})
	if err != nil {
		return err
	}

	if task.Status == store.StatusBlocked {
		fmt.Printf("%s%s%s registered, blocked on %s%s%s\n",
			colorBold, task.Name, colorReset,
			colorYellow, strings.Join(task.BlockedBy, ", "), colorReset)
		return nil
	}
	fmt.Printf("%s%s%s spawned on %s%s%s\n",
		colorBold, task.Name, colorReset, colorCyan, task.Branch, colorReset)
	fmt.Printf("  attach: %swt attach %s%s\n", colorDim, task.Name, colorReset)
	return nil
}
