package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mergeDelete bool

var mergeCmd = &cobra.Command{
	Use:   "merge [name]",
	Short: "Merge a task's branch and tear the task down",
	Long: `Merges the task's branch into the base branch, starts any tasks that
were waiting on it, then closes the task's window and unregisters it.
Refuses when the workspace has uncommitted changes. On a merge conflict
the repository is left mid-merge for manual resolution and the task is
untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeDelete, "delete", false, "also remove the worktree and branch")
}

func runMerge(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := c.Merge(args[0], mergeDelete)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s merged into %s%s%s\n",
		colorBold, args[0], colorReset, colorGreen, result.Base, colorReset)
	for _, name := range result.Unblocked {
		fmt.Printf("  %sstarted%s %s\n", colorCyan, colorReset, name)
	}
	return nil
}
