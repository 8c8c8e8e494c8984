package cli

import "github.com/spf13/cobra"

var attachCmd = &cobra.Command{
	Use:   "attach [name]",
	Short: "Attach to the task session",
	Long: `Hands the terminal over to the tmux session holding the task windows.
With a task name, that task's window is selected first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAttach,
}

func runAttach(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return c.Attach(name)
}
