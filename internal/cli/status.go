package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick status overview",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, cleanup, err := mustCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := c.Status()
	if err != nil {
		return err
	}
	if summary.Total == 0 {
		fmt.Printf("No tasks. Run: %swt spawn <name>%s\n", colorCyan, colorReset)
		return nil
	}

	fmt.Printf("%sTasks: %d total%s\n", colorBold, summary.Total, colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "in_progress:", colorGreen, summary.InProgress, colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "blocked:", colorRed, summary.Blocked, colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "completed:", colorBlue, summary.Completed, colorReset)

	if len(summary.NeedsAttention) > 0 {
		fmt.Printf("\n%sWorkers waiting on you:%s\n", colorRed+colorBold, colorReset)
		for _, name := range summary.NeedsAttention {
			fmt.Printf("  %s%s%s  wt attach %s\n", colorYellow, name, colorReset, name)
		}
	}
	return nil
}
