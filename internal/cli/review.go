package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reviewFull bool

var reviewCmd = &cobra.Command{
	Use:   "review [name]",
	Short: "Inspect a task's work without touching it",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewFull, "full", false, "include the complete diff")
}

func runReview(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := c.Review(args[0], reviewFull)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s  %s vs %s\n",
		colorBold, report.Task.Name, colorReset, report.Task.Branch, report.Base)
	fmt.Printf("  commits ahead: %d\n", report.CommitsAhead)
	if report.Dirty {
		fmt.Printf("  %suncommitted changes in the workspace%s\n", colorYellow, colorReset)
	}
	if len(report.CommitLog) > 0 {
		fmt.Println()
		for _, line := range report.CommitLog {
			fmt.Printf("  %s\n", line)
		}
	}
	if report.DiffStat != "" {
		fmt.Printf("\n%s\n", report.DiffStat)
	}
	if reviewFull && report.Diff != "" {
		fmt.Printf("\n%s\n", report.Diff)
	}
	return nil
}
