package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill [name]",
	Short: "Abandon a task",
	Long: `Closes the task's window and unregisters it. The worktree is left on
disk in case anything in it is worth keeping. Killing a task that does
not exist is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runKill,
}

func runKill(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := c.Kill(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s%s%s killed\n", colorBold, args[0], colorReset)
	return nil
}
